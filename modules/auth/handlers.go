package auth

import (
	"net/http"

	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

func (m *Module) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	res, err := m.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}

	switch res.Status {
	case auth.StatusEnrollmentRequired:
		// Error status with a payload: the client needs the account id
		// to drive the enrollment flow, but no session exists.
		writeJSON(w, http.StatusForbidden, envelope{
			Status: statusError,
			Data: map[string]any{
				"requireMfaEnrollment": true,
				"userId":               res.User.ID,
				"email":                res.User.Email,
				"message":              "MFA enrollment required for admin accounts",
			},
		})
	case auth.StatusMFARequired:
		respondData(w, http.StatusOK, map[string]any{
			"mfaRequired":    true,
			"challengeToken": res.ChallengeToken,
			"user":           res.User,
		})
	default:
		respondData(w, http.StatusOK, map[string]any{
			"user":         res.User,
			"accessToken":  res.AccessToken,
			"refreshToken": res.RefreshToken,
		})
	}
}

func (m *Module) verifyMFA(w http.ResponseWriter, r *http.Request) {
	var req verifyMFARequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	verification, err := m.auth.VerifyMFA(r.Context(), req.ChallengeToken, req.Token, req.BackupCode)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"user":                 verification.User,
		"accessToken":          verification.AccessToken,
		"refreshToken":         verification.RefreshToken,
		"mfaRequired":          false,
		"backupCodesRemaining": verification.BackupCodesRemaining,
	})
}

func (m *Module) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if req.RefreshToken == "" {
		respondBadRequest(w, "Refresh token is required")
		return
	}

	access, err := m.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"accessToken": access})
}

func (m *Module) logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := m.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Logged out successfully")
}

func (m *Module) profile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{
			Status:  statusError,
			Message: "Authentication required",
		})
		return
	}
	view, err := m.auth.Profile(r.Context(), id.UserID)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"user": view})
}

func (m *Module) enrollSecret(w http.ResponseWriter, r *http.Request) {
	var req enrollSecretRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	userID, err := req.userID()
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	enrollment, err := m.auth.IssueEnrollmentSecret(r.Context(), userID)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"secret":     enrollment.Secret,
		"otpauthUrl": enrollment.OTPAuthURL,
		"qrDataUrl":  enrollment.QRCodeDataURL,
	})
}

func (m *Module) enrollEnable(w http.ResponseWriter, r *http.Request) {
	var req enrollEnableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	userID, err := req.userID()
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	codes, err := m.auth.Enable(r.Context(), userID, req.Token)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"mfaEnabled":  true,
		"backupCodes": codes,
		"message":     "MFA enabled successfully",
	})
}

func (m *Module) issueSecret(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	enrollment, err := m.auth.IssueSecret(r.Context(), id.UserID)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"secret":     enrollment.Secret,
		"otpauthUrl": enrollment.OTPAuthURL,
		"qrDataUrl":  enrollment.QRCodeDataURL,
	})
}

func (m *Module) enable(w http.ResponseWriter, r *http.Request) {
	var req enableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	id, _ := auth.IdentityFromContext(r.Context())

	codes, err := m.auth.Enable(r.Context(), id.UserID, req.Token)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"mfaEnabled":  true,
		"backupCodes": codes,
		"message":     "MFA enabled successfully",
	})
}

func (m *Module) disable(w http.ResponseWriter, r *http.Request) {
	var req disableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	id, _ := auth.IdentityFromContext(r.Context())

	if err := m.auth.Disable(r.Context(), id.UserID, req.Password); err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondMessage(w, http.StatusOK, "MFA disabled successfully")
}
