package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	logError(userMsg, logMsg, err)
	http.Error(w, userMsg, status)
}

// respondJSONError is respondWithError for API routes: the body is
// {"error": userMsg} and internal details only reach the log
func respondJSONError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	logError(userMsg, logMsg, err)
	respondJSON(w, status, errorResponse{Error: userMsg})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func logError(userMsg, logMsg string, err error) {
	if err == nil {
		return
	}
	if logMsg == "" {
		logMsg = userMsg
	}
	log.Printf("%s: %v", logMsg, err)
}
