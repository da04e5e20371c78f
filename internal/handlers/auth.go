package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/portal/internal/session"
	"github.com/lehigh-university-libraries/portal/internal/views"
)

type loginData struct {
	Tab           string // "login" or "register"
	Kind          string
	Identifier    string
	Next          string
	StaffPrefix   string
	LoginError    string
	Register      session.RegistrationForm
	RegisterError string
}

func (h *Handler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	actor := session.ActorFrom(r.Context())
	next := r.URL.Query().Get("next")
	if actor.SignedIn() {
		redirect(w, r, landing(next))
		return
	}
	data := loginData{
		Tab:         r.URL.Query().Get("tab"),
		Next:        safeNextOrEmpty(next),
		StaffPrefix: h.staffPrefix,
	}
	h.render(w, r, http.StatusOK, views.PageLogin, "Log in", data)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	creds := session.Credentials{
		Kind:       session.Role(r.PostForm.Get("kind")),
		Identifier: strings.TrimSpace(r.PostForm.Get("identifier")),
		Password:   r.PostForm.Get("password"),
	}
	next := r.PostForm.Get("next")

	actor, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		data := loginData{
			Tab:         "login",
			Kind:        string(creds.Kind),
			Identifier:  creds.Identifier,
			Next:        safeNextOrEmpty(next),
			StaffPrefix: h.staffPrefix,
		}
		code := http.StatusBadRequest
		switch msg, ok := validationMessage(err); {
		case ok:
			data.LoginError = msg
		case errors.Is(err, session.ErrUnauthorized):
			code = http.StatusUnauthorized
			data.LoginError = session.UnauthorizedMessage
		case r.Context().Err() != nil:
			return
		default:
			slog.Error("Login failed", "err", err)
			code = http.StatusInternalServerError
			data.LoginError = "Something went wrong. Please try again."
		}
		h.render(w, r, code, views.PageLogin, "Log in", data)
		return
	}

	if err := h.sessions.Save(w, r, actor); err != nil {
		slog.Error("Unable to save session", "err", err)
		h.renderError(w, r, http.StatusInternalServerError, "Unable to sign you in right now.")
		return
	}
	slog.Info("Signed in", "role", actor.Role.String(), "id", actor.ID)
	h.flash(w, r, "success", "Login successful", "Welcome back, "+actor.Name+".")
	redirect(w, r, landing(next))
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	form := session.RegistrationForm{
		FullName:        r.PostForm.Get("fullName"),
		StudentID:       r.PostForm.Get("studentId"),
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirmPassword"),
	}

	if _, err := h.auth.Register(r.Context(), form); err != nil {
		if r.Context().Err() != nil {
			return
		}
		data := loginData{
			Tab:         "register",
			StaffPrefix: h.staffPrefix,
			Register:    session.RegistrationForm{FullName: form.FullName, StudentID: form.StudentID, Email: form.Email},
		}
		code := http.StatusBadRequest
		switch msg, ok := validationMessage(err); {
		case ok:
			data.RegisterError = msg
		case errors.Is(err, session.ErrAccountExists):
			code = http.StatusConflict
			data.RegisterError = "An account with this student ID already exists."
		default:
			slog.Error("Registration failed", "err", err)
			code = http.StatusInternalServerError
			data.RegisterError = "Something went wrong. Please try again."
		}
		h.render(w, r, code, views.PageLogin, "Register", data)
		return
	}

	h.flash(w, r, "success", "Registration successful", "Please log in with your new account.")
	redirect(w, r, "/login")
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		slog.Error("Unable to clear session", "err", err)
	}
	h.flash(w, r, "success", "Signed out", "You have been logged out.")
	redirect(w, r, "/")
}

// landing is where a successful login goes
func landing(next string) string {
	if next = session.SafeNext(next); next != "/" {
		return next
	}
	return "/dashboard"
}

func safeNextOrEmpty(next string) string {
	if next = session.SafeNext(next); next == "/" {
		return ""
	}
	return next
}
