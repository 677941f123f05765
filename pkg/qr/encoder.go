// Package qr computes ticket QR payloads and renders them to PNG files.
package qr

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDir = "qr_codes"
	fileExt    = ".png"
)

var ErrMalformedContent = errors.New("malformed qr content")

// Encoder derives the QR content and artifact path of a ticket. It does no I/O.
type Encoder struct {
	Dir string
}

func NewEncoder(dir string) Encoder {
	if dir == "" {
		dir = DefaultDir
	}
	return Encoder{Dir: dir}
}

// Encode returns content "seminar:<sid>|student:<uid>|<unix millis>" and path
// "<dir>/TICKET_<sid>_<uid>_<unix millis>.png". Both use the same instant, so a
// single call always yields a matching pair.
func (e Encoder) Encode(seminarID, studentID int64, at time.Time) (content, path string) {
	millis := at.UnixMilli()
	content = fmt.Sprintf("seminar:%d|student:%d|%d", seminarID, studentID, millis)
	path = filepath.Join(e.Dir, fmt.Sprintf("TICKET_%d_%d_%d%s", seminarID, studentID, millis, fileExt))
	return content, path
}

// Payload is the decoded form of a QR content string.
type Payload struct {
	SeminarID int64
	StudentID int64
	IssuedAt  time.Time
}

// Parse reverses Encode's content format.
func Parse(content string) (Payload, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return Payload{}, ErrMalformedContent
	}

	seminarID, err := parseTagged(parts[0], "seminar:")
	if err != nil {
		return Payload{}, err
	}
	studentID, err := parseTagged(parts[1], "student:")
	if err != nil {
		return Payload{}, err
	}
	millis, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: timestamp %q", ErrMalformedContent, parts[2])
	}

	return Payload{
		SeminarID: seminarID,
		StudentID: studentID,
		IssuedAt:  time.UnixMilli(millis).UTC(),
	}, nil
}

func parseTagged(part, tag string) (int64, error) {
	raw, ok := strings.CutPrefix(part, tag)
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrMalformedContent, tag)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: bad id %q", ErrMalformedContent, raw)
	}
	return id, nil
}
