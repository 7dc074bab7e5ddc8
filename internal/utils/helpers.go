package utils

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// --- Helper Functions ---
func WriteJSON(w http.ResponseWriter, code int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

// --- JWT Helper ---
// GenerateMatchToken signs a token binding a player to a match, consumed by
// downstream session services.
func GenerateMatchToken(matchId, playerId string, jwtSecret []byte) (string, error) {
	claims := jwt.MapClaims{
		"matchId":  matchId,
		"playerId": playerId,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}
