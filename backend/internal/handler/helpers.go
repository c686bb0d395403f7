package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ptchurch/site/shared/errors"
)

// parseIntParam parses an integer parameter from a string and returns a meaningful error
func parseIntParam(param string, paramName string) (int, error) {
	val, err := strconv.Atoi(param)
	if err != nil {
		e := errors.BadRequest(errors.CodeValidationFailed, fmt.Sprintf("invalid %s: must be an integer", paramName))
		e.Fields = []string{paramName}
		return 0, e
	}
	return val, nil
}

// writeCalendar serves an iCalendar document. Attachments are single-item
// downloads (one event or one service) and are never cached.
func writeCalendar(w http.ResponseWriter, filename, body string, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=300")
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
