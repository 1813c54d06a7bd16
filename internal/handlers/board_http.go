package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jason-s-yu/quizboard/internal/auth"
	"github.com/jason-s-yu/quizboard/internal/store"
)

// maxBackupBytes caps an uploaded backup.
const maxBackupBytes = 8 << 20

type loginRequest struct {
	Password string `json:"password"`
}

// handleLogin trades the host password for a token, also set as a cookie.
func (bs *BoardServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, bs.Logger, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := bs.Auth.Login(req.Password)
	if errors.Is(err, auth.ErrWrongPassword) {
		bs.Logger.WithField("remote", r.RemoteAddr).Warn("host login failed")
		writeError(w, bs.Logger, http.StatusUnauthorized, "wrong password")
		return
	}
	if err != nil {
		bs.Logger.WithError(err).Error("host login error")
		writeError(w, bs.Logger, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     hostCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, bs.Logger, http.StatusOK, map[string]string{"token": token})
}

func (bs *BoardServer) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, bs.Logger, http.StatusOK, bs.Session.State())
}

func (bs *BoardServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, bs.Logger, http.StatusOK, bs.Session.Leaderboard())
}

// handleExportBackup streams the backup as a downloadable file.
func (bs *BoardServer) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	b := bs.Session.ExportBackup(time.Now())
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(b.ExportedAt)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quizboard-backup-%s.json"`, stamp))

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		bs.Logger.WithError(err).Warn("failed to write backup")
	}
}

// handleImportBackup replaces every record with the uploaded backup. The
// validation message is returned to the host unchanged.
func (bs *BoardServer) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		writeError(w, bs.Logger, http.StatusRequestEntityTooLarge, "backup too large")
		return
	}
	b, err := store.ParseBackup(raw, time.Now())
	if err != nil {
		writeError(w, bs.Logger, http.StatusBadRequest, err.Error())
		return
	}
	snap := bs.Session.ImportBackup(r.Context(), b)
	bs.Logger.WithField("questions", len(b.Questions)).Info("backup imported")
	writeJSON(w, bs.Logger, http.StatusOK, snap)
}
