package handler

import (
	"net/http"
	"strings"

	"github.com/usedgoods/marketplace/internal/ctxkeys"
	"github.com/usedgoods/marketplace/internal/model"
	"github.com/usedgoods/marketplace/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	uploads     *Uploader
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService, uploads *Uploader) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		uploads:     uploads,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register accepts JSON, or a multipart form when an avatar file is attached.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.Registration

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err := h.uploads.parse(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in = service.Registration{
			Name:     r.FormValue("name"),
			Email:    r.FormValue("email"),
			Tel:      r.FormValue("tel"),
			Password: r.FormValue("password"),
		}

		avatar := &Uploader{storage: h.uploads.storage, maxFiles: 1, maxBytes: h.uploads.maxBytes}
		handles, err := avatar.stage(r.Context(), r.MultipartForm, "avatar")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if len(handles) == 1 {
			in.AvatarHandle = handles[0]
		}
	} else {
		err := decodeJSON(w, r, &in)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	user, err := h.authService.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.ByID(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
