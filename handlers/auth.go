package handlers

import (
	"net/http"

	"easybook/models"
	"easybook/services/user"
	"easybook/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
	Users user.UserService
}

func NewAuthHandler(users user.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegistrationRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Users.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "User registered successfully", resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Users.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) VerifyFirebaseToken(c *gin.Context) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Users.VerifyFirebaseToken(c.Request.Context(), req.IDToken)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Authentication successful", resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	usr, err := h.Users.GetUserByID(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", gin.H{"user": usr})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	usr, err := h.Users.UpdateProfile(c.Request.Context(), actorFrom(c).ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Profile updated successfully", gin.H{"user": usr})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.ChangePassword(c.Request.Context(), actorFrom(c).ID, req); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.VerifyEmail(c.Request.Context(), req); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Email verified successfully", nil)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.ResendVerification(c.Request.Context(), req.Email); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Verification code sent", nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Password reset code sent to your email", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.ResetPassword(c.Request.Context(), req); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Password reset successfully", nil)
}

func (h *AuthHandler) UpdateFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.UpdateFCMToken(c.Request.Context(), actorFrom(c).ID, req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "FCM token updated", nil)
}
