package handlers

import (
	"net/http"
	"time"

	"FileVault/internal/auth"
	"FileVault/internal/config"
	"FileVault/internal/middleware"
	"FileVault/internal/model"
	"FileVault/internal/service"

	"go.uber.org/zap"
)

// UserHandler регистрация, вход и профиль.
type UserHandler struct {
	UserService    *service.UserService
	ContentService *service.ContentService
	Logger         *zap.SugaredLogger
	Config         *config.Config
}

func NewUserHandler(userService *service.UserService, contentService *service.ContentService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, ContentService: contentService, Logger: logger, Config: cfg}
}

// UserDTO публичный профиль, без хеша пароля.
type UserDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SignUpResponse struct {
	Message string  `json:"message"`
	Data    UserDTO `json:"data"`
}

type LoginUserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      LoginUserDTO `json:"user"`
}

type IndexResponse struct {
	Message string         `json:"message"`
	User    UserDTO        `json:"user"`
	Folders []model.Folder `json:"folders"`
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name}
}

// SignUp регистрация пользователя
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		writeError(w, h.Logger, err, "")
		return
	}

	u, err := h.UserService.Register(r.Context(), f["username"], f["password"], f["confirmPassword"])
	if err != nil {
		writeError(w, h.Logger, err, "")
		return
	}
	h.Logger.Infow("user registered", "user_id", u.ID, "name", u.Name)
	writeJSON(w, http.StatusCreated, SignUpResponse{Message: "User created successfully", Data: toUserDTO(u)})
}

// Login проверка пароля и выдача Bearer-токена
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		writeError(w, h.Logger, err, "")
		return
	}

	res, err := h.UserService.Login(r.Context(), f["username"], f["password"])
	if err != nil {
		writeError(w, h.Logger, err, "")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Message:   "Login successful",
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      LoginUserDTO{ID: res.User.ID, Username: res.User.Name},
	})
}

// Logout токены не отзываются: клиент просто забывает свой токен.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// Status проверка доступности API
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "hello from filevault api :)")
}

func (h *UserHandler) currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.Logger, auth.ErrMissingToken, "")
		return nil, false
	}
	u, err := h.UserService.GetUser(r.Context(), uid)
	if err != nil {
		writeError(w, h.Logger, err, "User")
		return nil, false
	}
	return u, true
}

// CurrentUser профиль владельца токена
func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]UserDTO{"user": toUserDTO(u)})
}

// Index профиль и список папок
func (h *UserHandler) Index(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	folders, err := h.ContentService.ListFolders(r.Context(), u.ID)
	if err != nil {
		writeError(w, h.Logger, err, "")
		return
	}
	writeJSON(w, http.StatusOK, IndexResponse{
		Message: "User data retrieved successfully",
		User:    toUserDTO(u),
		Folders: folders,
	})
}
