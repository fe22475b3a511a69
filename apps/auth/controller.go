package auth

import (
	"strings"
	"time"

	"github.com/flowtalk-io/flowtalk-backend/lib/imageutil"
	"github.com/flowtalk-io/flowtalk-backend/lib/response"
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Controller struct {
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	DisplayName     string `json:"display_name"`
	PrimaryLanguage string `json:"primary_language"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         *User  `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// EditProfileRequest defines the structure for the edit profile request.
// Avatar accepts a base64 data URL; it is resized and stored on disk.
type EditProfileRequest struct {
	DisplayName     *string `json:"display_name"`
	Avatar          *string `json:"avatar"`
	Password        *string `json:"password"`
	PrimaryLanguage *string `json:"primary_language"`
}

// PublicProfile is the subset of a user other members may see.
type PublicProfile struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	DisplayName     string    `json:"display_name"`
	Avatar          *string   `json:"avatar"`
	PrimaryLanguage string    `json:"primary_language"`
	Status          string    `json:"status"`
}

// RegisterHandler creates a new member account.
func (c Controller) RegisterHandler(request *evo.Request) any {
	var params RegisterRequest
	if err := request.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	params.Username = strings.ToLower(strings.TrimSpace(params.Username))
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	if !ValidUsername(params.Username) {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Username must be 3-50 characters of letters, digits, dot, dash or underscore", 400))
	}
	if params.Email == "" || !strings.Contains(params.Email, "@") {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "A valid email address is required", 400))
	}
	if len(params.Password) < 8 {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Password must be at least 8 characters", 400))
	}

	language := strings.ToLower(strings.TrimSpace(params.PrimaryLanguage))
	if language == "" {
		language = "en"
	}
	if !ValidLanguageCode(language) {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Invalid primary language code", 400))
	}

	var existing User
	if err := db.Where("username = ? OR email = ?", params.Username, params.Email).First(&existing).Error; err == nil {
		return response.Error(response.NewError(response.ErrorCodeConflict, "Username or email is already taken", 409))
	}

	user := User{
		Username:        params.Username,
		Email:           params.Email,
		DisplayName:     params.DisplayName,
		PrimaryLanguage: language,
		Type:            UserTypeMember,
		Status:          UserStatusActive,
	}
	if user.DisplayName == "" {
		user.DisplayName = params.Username
	}
	if err := user.SetPassword(params.Password); err != nil {
		return response.Error(response.ErrInternalError)
	}
	if err := db.Create(&user).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	accessToken, err := user.GenerateJWT()
	if err != nil {
		return response.Error(response.ErrInternalError)
	}
	refreshToken, err := user.GenerateRefreshToken()
	if err != nil {
		return response.Error(response.ErrInternalError)
	}

	user.RecordLogin(request, true, "registration")
	user.PasswordHash = nil
	request.Context.Cookie(newAuthCookie(accessToken, time.Now()))

	return response.OK(LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(AccessTokenLifetime.Seconds()),
		User:         &user,
	})
}

// LoginHandler authenticates by username or email.
func (c Controller) LoginHandler(request *evo.Request) any {
	var loginReq LoginRequest
	if err := request.BodyParser(&loginReq); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	identifier := strings.ToLower(strings.TrimSpace(loginReq.Username))
	if identifier == "" {
		identifier = strings.ToLower(strings.TrimSpace(loginReq.Email))
	}
	if identifier == "" || loginReq.Password == "" {
		return response.Error(response.ErrInvalidInput)
	}

	var user User
	if err := db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error; err != nil {
		user.RecordLogin(request, false, "user_not_found")
		invalidCredentialsErr := response.NewError(response.ErrorCodeUnauthorized, "Invalid credentials", 401)
		return response.Error(invalidCredentialsErr)
	}

	if !user.VerifyPassword(loginReq.Password) {
		user.RecordLogin(request, false, "invalid_password")
		invalidCredentialsErr := response.NewError(response.ErrorCodeUnauthorized, "Invalid credentials", 401)
		return response.Error(invalidCredentialsErr)
	}

	if user.Status == UserStatusBlocked {
		user.RecordLogin(request, false, "account_blocked")
		blockedErr := response.NewError(response.ErrorCodeForbidden, "Your account has been blocked. Please contact an administrator.", 403)
		return response.Error(blockedErr)
	}

	accessToken, err := user.GenerateJWT()
	if err != nil {
		user.RecordLogin(request, false, "token_generation_failed")
		return response.Error(response.ErrInternalError)
	}

	refreshToken, err := user.GenerateRefreshToken()
	if err != nil {
		user.RecordLogin(request, false, "refresh_token_generation_failed")
		return response.Error(response.ErrInternalError)
	}

	user.RecordLogin(request, true, "login_success")
	user.PasswordHash = nil
	request.Context.Cookie(newAuthCookie(accessToken, time.Now()))

	return response.OK(LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(AccessTokenLifetime.Seconds()),
		User:         &user,
	})
}

// RefreshHandler exchanges a refresh token for a new token pair.
func (c Controller) RefreshHandler(request *evo.Request) any {
	var refreshReq RefreshRequest
	if err := request.BodyParser(&refreshReq); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	token, err := jwt.ParseWithClaims(refreshReq.RefreshToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	})

	if err != nil || !token.Valid {
		return response.Error(response.ErrInvalidToken)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return response.Error(response.ErrInvalidToken)
	}

	var user User
	if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		return response.Error(response.ErrUserNotFound)
	}
	if user.Status == UserStatusBlocked {
		return response.Error(response.NewError(response.ErrorCodeForbidden, "Your account has been blocked.", 403))
	}

	accessToken, err := user.GenerateJWT()
	if err != nil {
		return response.Error(response.ErrInternalError)
	}

	newRefreshToken, err := user.GenerateRefreshToken()
	if err != nil {
		return response.Error(response.ErrInternalError)
	}

	user.PasswordHash = nil
	request.Context.Cookie(newAuthCookie(accessToken, time.Now()))

	return response.OK(LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(AccessTokenLifetime.Seconds()),
		User:         &user,
	})
}

// LogoutHandler records the logout. Tokens are stateless; clients drop them.
func (c Controller) LogoutHandler(request *evo.Request) any {
	if user, ok := request.User().(*User); ok && !user.Anonymous() {
		user.RecordLogin(request, true, "logout")
	}
	request.Context.Cookie(expiredAuthCookie(time.Now()))
	return response.Message("Logged out")
}

// Me returns the current user's own record.
func (c Controller) Me(request *evo.Request) interface{} {
	user, ok := request.User().(*User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}
	user.PasswordHash = nil
	user.APIKey = nil
	return response.OK(user)
}

// EditProfile updates the current user's profile.
func (c Controller) EditProfile(req *evo.Request) interface{} {
	user, ok := req.User().(*User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}
	var params EditProfileRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	if params.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*params.DisplayName)
	}
	if params.PrimaryLanguage != nil {
		language := strings.ToLower(strings.TrimSpace(*params.PrimaryLanguage))
		if !ValidLanguageCode(language) {
			return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Invalid primary language code", 400))
		}
		user.PrimaryLanguage = language
	}
	if params.Avatar != nil {
		if *params.Avatar == "" {
			user.Avatar = nil
		} else if strings.HasPrefix(*params.Avatar, "data:") {
			path, err := imageutil.ProcessAvatarFromBase64(*params.Avatar, "avatars")
			if err != nil {
				log.Error("Failed to process avatar:", err)
				return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Invalid avatar image", 400))
			}
			user.Avatar = &path
		} else {
			user.Avatar = params.Avatar
		}
	}
	if params.Password != nil && *params.Password != "" {
		if len(*params.Password) < 8 {
			return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Password must be at least 8 characters", 400))
		}
		if err := user.SetPassword(*params.Password); err != nil {
			log.Error(err)
			return response.Error(response.ErrInternalError)
		}
	}

	if err := db.Save(&user).Error; err != nil {
		log.Error(err)
		return response.Error(response.ErrDatabaseError)
	}

	user.PasswordHash = nil
	user.APIKey = nil
	return response.OKWithMessage(user, "Profile updated successfully")
}

// GetPublicProfile returns another member's public profile by id or
// username.
func (c Controller) GetPublicProfile(req *evo.Request) interface{} {
	identifier := req.Param("id").String()
	if identifier == "" {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "User identifier is required", 400))
	}

	var user User
	var err error
	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		err = db.Where("id = ?", id).First(&user).Error
	} else {
		err = db.Where("username = ?", strings.ToLower(identifier)).First(&user).Error
	}
	if err != nil {
		return response.Error(response.ErrUserNotFound)
	}

	return response.OK(PublicProfile{
		ID:              user.UserID,
		Username:        user.Username,
		DisplayName:     user.DisplayName,
		Avatar:          user.Avatar,
		PrimaryLanguage: user.PrimaryLanguage,
		Status:          user.Status,
	})
}

// GenerateAPIKey generates a new API key for the authenticated user,
// replacing any existing one.
func (c Controller) GenerateAPIKey(req *evo.Request) interface{} {
	user, ok := req.User().(*User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	apiKey, err := user.GenerateAPIKey()
	if err != nil {
		log.Error("Failed to generate API key:", err)
		return response.Error(response.ErrInternalError)
	}

	if err := db.Save(user).Error; err != nil {
		log.Error("Failed to save API key:", err)
		return response.Error(response.ErrDatabaseError)
	}

	return response.OK(map[string]string{
		"api_key": apiKey,
	})
}

// RevokeAPIKey removes the API key from the authenticated user
func (c Controller) RevokeAPIKey(req *evo.Request) interface{} {
	user, ok := req.User().(*User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	user.ClearAPIKey()

	if err := db.Save(user).Error; err != nil {
		log.Error("Failed to revoke API key:", err)
		return response.Error(response.ErrDatabaseError)
	}

	return response.Message("API key revoked successfully")
}
