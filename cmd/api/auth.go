package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bulkwala/internal/degrade"
	"bulkwala/internal/domain/users"
	"bulkwala/internal/mailer"
	"bulkwala/internal/store"

	"github.com/go-chi/chi/v5"
)

type RegisterUserPayload struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,inphone"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=customer seller"`
}

type registeredUser struct {
	User          *users.User     `json:"user"`
	EmailDelivery mailer.Delivery `json:"emailDelivery"`
}

// registerUserHandler godoc
//
//	@Summary		Registers a user
//	@Description	Creates an unverified account and mails a verification code. Without SMTP the code is only logged.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RegisterUserPayload	true	"User credentials"
//	@Success		201		{object}	registeredUser
//	@Failure		400		{object}	envelope
//	@Failure		409		{object}	envelope
//	@Failure		503		{object}	envelope
//	@Router			/auth/register [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	role := users.RoleCustomer
	if payload.Role != "" {
		role = users.Role(payload.Role)
	}

	user := &users.User{
		Name:  payload.Name,
		Email: payload.Email,
		Phone: payload.Phone,
		Role:  role,
	}
	// hash the user password.
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	var plainToken string
	op := degrade.Write("register user", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*users.User, error) {
		token, hash, err := users.NewToken()
		if err != nil {
			return nil, err
		}
		if err := app.store.Users.Create(ctx, user, hash, time.Now().Add(users.VerificationTTL)); err != nil {
			return nil, err
		}
		plainToken = token
		return user, nil
	}, nil)

	if out.IsFailure() {
		app.errorResponse(w, r, out.Err)
		return
	}

	delivery := app.mail.SendVerification(r.Context(), user.Name, user.Email, plainToken)
	if delivery == mailer.Failed {
		app.logger.Warnw("verification email not delivered", "user", user.ID)
	}

	data := registeredUser{User: user, EmailDelivery: delivery}
	if err := app.jsonResponse(w, http.StatusCreated, data, "User registered successfully. Please verify your email"); err != nil {
		app.internalServerError(w, r, err)
	}
}

// verifyEmailHandler godoc
//
//	@Summary	Verify an email address
//	@Tags		authentication
//	@Produce	json
//	@Param		token	path		string	true	"Verification code"
//	@Success	200		{object}	envelope
//	@Failure	400		{object}	envelope
//	@Failure	503		{object}	envelope
//	@Router		/auth/verify-email/{token} [put]
func (app *application) verifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	op := degrade.Write("verify email", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (any, error) {
		return nil, app.store.Users.Verify(ctx, users.HashToken(token))
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Email verified successfully"})
}

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=3,max=72"`
}

type tokenPair struct {
	User         *users.User `json:"user,omitempty"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// loginHandler godoc
//
//	@Summary	Log in with email and password
//	@Tags		authentication
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		LoginPayload	true	"Credentials"
//	@Success	200		{object}	tokenPair
//	@Failure	401		{object}	envelope
//	@Failure	403		{object}	envelope
//	@Failure	503		{object}	envelope
//	@Router		/auth/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	op := degrade.Write("login", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (tokenPair, error) {
		user, err := app.store.Users.GetByEmail(ctx, payload.Email)
		if errors.Is(err, store.ErrNotFound) {
			return tokenPair{}, errInvalidCredentials
		}
		if err != nil {
			return tokenPair{}, err
		}

		if err := user.Password.Compare(payload.Password); err != nil {
			return tokenPair{}, errInvalidCredentials
		}
		if !user.IsVerified {
			return tokenPair{}, errEmailNotVerified
		}

		access, refresh, err := app.authenticator.GenerateTokens(user.ID, string(user.Role))
		if err != nil {
			return tokenPair{}, err
		}
		return tokenPair{User: user, AccessToken: access, RefreshToken: refresh}, nil
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Logged in successfully"})
}

type RefreshPayload struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// refreshTokenHandler godoc
//
//	@Summary	Exchange a refresh token for a new token pair
//	@Tags		authentication
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		RefreshPayload	true	"Refresh token"
//	@Success	200		{object}	tokenPair
//	@Failure	401		{object}	envelope
//	@Router		/auth/refresh [post]
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload RefreshPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	claims, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	// the role is read again so a changed role applies from the next refresh
	op := degrade.Write("refresh token", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (tokenPair, error) {
		user, err := app.store.Users.GetByID(ctx, claims.Subject)
		if errors.Is(err, store.ErrNotFound) {
			return tokenPair{}, errInvalidCredentials
		}
		if err != nil {
			return tokenPair{}, err
		}

		access, refresh, err := app.authenticator.GenerateTokens(user.ID, string(user.Role))
		if err != nil {
			return tokenPair{}, err
		}
		return tokenPair{AccessToken: access, RefreshToken: refresh}, nil
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Token refreshed successfully"})
}

type SendOTPPayload struct {
	Phone string `json:"phone" validate:"required,inphone"`
}

type otpStatus struct {
	Status string `json:"status"`
}

// sendOTPHandler godoc
//
//	@Summary		Send a one time password by SMS
//	@Description	Without SMS credentials the send is simulated and reports "pending"
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		SendOTPPayload	true	"Phone number"
//	@Success		200		{object}	otpStatus
//	@Failure		400		{object}	envelope
//	@Failure		500		{object}	envelope
//	@Router			/auth/otp/send [post]
func (app *application) sendOTPHandler(w http.ResponseWriter, r *http.Request) {
	var payload SendOTPPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	out := app.sms.SendOTP(r.Context(), payload.Phone)

	writeOutcome(app, w, r, mapOutcome(out, func(s string) otpStatus { return otpStatus{Status: s} }), http.StatusOK, messages{
		OK:       "OTP sent successfully",
		Degraded: "OTP sent (simulated)",
	})
}

type VerifyOTPPayload struct {
	Phone string `json:"phone" validate:"required,inphone"`
	Code  string `json:"code" validate:"required,numeric,min=4,max=10"`
}

type otpVerification struct {
	Verified bool `json:"verified"`
}

// verifyOTPHandler godoc
//
//	@Summary	Verify a one time password
//	@Tags		authentication
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		VerifyOTPPayload	true	"Phone number and code"
//	@Success	200		{object}	otpVerification
//	@Failure	400		{object}	envelope
//	@Router		/auth/otp/verify [post]
func (app *application) verifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	var payload VerifyOTPPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	out := app.sms.VerifyOTP(r.Context(), payload.Phone, payload.Code)
	if !out.IsFailure() && !out.Value {
		writeJSONError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	writeOutcome(app, w, r, mapOutcome(out, func(ok bool) otpVerification { return otpVerification{Verified: ok} }), http.StatusOK, messages{
		OK:       "OTP verified successfully",
		Degraded: "OTP verified (simulated)",
	})
}

type ForgotPasswordPayload struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type resetRequested struct {
	EmailDelivery mailer.Delivery `json:"emailDelivery"`
}

// forgotPasswordHandler godoc
//
//	@Summary		Request a password reset link
//	@Description	Mails a link valid for one hour
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ForgotPasswordPayload	true	"Account email"
//	@Success		200		{object}	resetRequested
//	@Failure		404		{object}	envelope
//	@Failure		503		{object}	envelope
//	@Router			/auth/forgot-password [post]
func (app *application) forgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload ForgotPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var plainToken string
	op := degrade.Write("forgot password", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*users.User, error) {
		user, err := app.store.Users.GetByEmail(ctx, payload.Email)
		if err != nil {
			return nil, err
		}

		token, hash, err := users.NewToken()
		if err != nil {
			return nil, err
		}
		if err := app.store.Users.SetResetToken(ctx, user.Email, hash, time.Now().Add(users.ResetTTL)); err != nil {
			return nil, err
		}
		plainToken = token
		return user, nil
	}, nil)

	if out.IsFailure() {
		app.errorResponse(w, r, out.Err)
		return
	}

	user := out.Value
	delivery := app.mail.SendPasswordReset(r.Context(), user.Name, user.Email, user.ID, plainToken)

	if err := app.jsonResponse(w, http.StatusOK, resetRequested{EmailDelivery: delivery}, "Password reset link sent to your email"); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ResetPasswordPayload struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// resetPasswordHandler godoc
//
//	@Summary	Set a new password with a reset token
//	@Tags		authentication
//	@Accept		json
//	@Produce	json
//	@Param		token	path		string					true	"Reset token"
//	@Param		payload	body		ResetPasswordPayload	true	"New password"
//	@Success	200		{object}	envelope
//	@Failure	400		{object}	envelope
//	@Failure	503		{object}	envelope
//	@Router		/auth/reset-password/{token} [post]
func (app *application) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var payload ResetPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var u users.User
	if err := u.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	op := degrade.Write("reset password", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (any, error) {
		return nil, app.store.Users.ResetPassword(ctx, users.HashToken(token), u.Password.Hash())
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Password reset successfully"})
}

// meHandler godoc
//
//	@Summary	Get the logged in user
//	@Tags		authentication
//	@Produce	json
//	@Success	200	{object}	users.User
//	@Failure	401	{object}	envelope
//	@Security	ApiKeyAuth
//	@Router		/auth/me [get]
func (app *application) meHandler(w http.ResponseWriter, r *http.Request) {
	claims := getClaimsFromContext(r)

	op := degrade.Write("get current user", degrade.Database)
	out := degrade.Run(r.Context(), app.exec, op, func(ctx context.Context) (*users.User, error) {
		return app.store.Users.GetByID(ctx, claims.Subject)
	}, nil)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "User fetched successfully"})
}
