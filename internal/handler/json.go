// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the failure envelope used by the article API routes.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set(HeaderContentType, "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}

// writeJSONSuccess writes the success envelope. Extra fields (such as a
// redirect URL) ride along in data.
func writeJSONSuccess(w http.ResponseWriter, message string, data map[string]any) {
	w.Header().Set(HeaderContentType, "application/json")
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	data["message"] = message
	_ = json.NewEncoder(w).Encode(data)
}
