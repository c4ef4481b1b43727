package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/blog/backend/internal/middleware"
	"github.com/anonto42/blog/backend/internal/models"
	"github.com/anonto42/blog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   middleware.TokenVerifier // nil unless the Firebase provider is configured
	jwtSecret      string
	logger         *zap.SugaredLogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuth middleware.TokenVerifier, jwtSecret string, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
		logger:         logger,
	}
}

// RegisterAuthRoutes registers authentication-related routes. With Firebase
// configured, accounts come from Firebase and local sign-up is disabled.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	if h.firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin)
	} else {
		g.POST("/signup", h.Signup)
		g.POST("/signin", h.SignIn)
	}
	g.GET("/me", h.Me, auth)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return httpError(h.logger, err)
	}

	return h.respondWithToken(c, http.StatusCreated, user)
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return httpError(h.logger, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and syncs the local user record,
// creating or linking it on first login. Clients keep using the ID token.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	uid := token.UID
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
		if email != "" {
			user.Email = email
		}
		if name != "" {
			user.Name = name
		}
		err = h.userRepository.UpdateUser(ctx, user)
	case errors.Is(err, models.ErrUserNotFound):
		user, err = h.userRepository.GetUserByEmail(ctx, email)
		if err == nil {
			// Existing local account, link it
			user.FirebaseUID = &uid
			err = h.userRepository.UpdateUser(ctx, user)
		} else if errors.Is(err, models.ErrUserNotFound) {
			user = &models.User{Name: name, Email: email, FirebaseUID: &uid}
			err = h.userRepository.CreateUser(ctx, user)
		}
	}
	if err != nil {
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusOK, user.ToCompact())
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	identity := middleware.Identity(c)

	var (
		user *models.User
		err  error
	)
	if h.firebaseAuth != nil {
		user, err = h.userRepository.GetUserByFirebaseUID(ctx, identity)
	} else {
		id, parseErr := strconv.ParseUint(identity, 10, 64)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid identity")
		}
		user, err = h.userRepository.GetUserByID(ctx, uint(id))
	}
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusOK, user.ToCompact())
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *models.User) error {
	token, err := middleware.IssueToken(user.ID, user.Email, h.jwtSecret, tokenTTL)
	if err != nil {
		h.logger.Errorw("sign token", "user_id", user.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(status, echo.Map{"token": token, "user": user.ToCompact()})
}
