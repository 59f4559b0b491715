// Package model defines domain entities shared by the client and the dev server.
package model

import "time"

// Role is the role tag carried by an identity.
type Role string

const (
	// RoleAdmin grants access to the management area.
	RoleAdmin Role = "ADMIN"
	// RoleUser is the default role for registered readers.
	RoleUser Role = "USER"
)

// Identity is the resolved user record, distinct from the credential.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Email    string `json:"email,omitempty"`
}

// IsAdmin reports whether the identity carries the admin role tag.
func (i *Identity) IsAdmin() bool { return i != nil && i.Role == RoleAdmin }

// LoginRequest is the body of /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// LoginResponse is returned by /auth/login and /auth/register.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	UserID       int64  `json:"userId"`
}

// Identity derives the identity record carried by a login response.
func (r LoginResponse) Identity() Identity {
	return Identity{ID: r.UserID, Username: r.Username, Role: r.Role}
}

// TokenRefreshRequest is the body of /auth/refresh.
type TokenRefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenRefreshResponse is returned by /auth/refresh.
type TokenRefreshResponse struct {
	Token string `json:"token"`
}

// News is a single article.
type News struct {
	ID                   int64      `json:"id"`
	Title                string     `json:"title"`
	Content              string     `json:"content"`
	SourceWebsite        string     `json:"sourceWebsite"`
	OriginalURL          string     `json:"originalUrl"`
	ImageURL             string     `json:"imageUrl,omitempty"`
	CategoryID           int64      `json:"categoryId"`
	PublishTime          time.Time  `json:"publishTime"`
	CrawlTime            *time.Time `json:"crawlTime,omitempty"`
	CreatedBy            *int64     `json:"createdBy,omitempty"`
	Status               string     `json:"status"`
	ClassificationMethod string     `json:"classificationMethod"`
	ViewCount            int64      `json:"viewCount"`
	LikeCount            int64      `json:"likeCount,omitempty"`
	CommentCount         int64      `json:"commentCount,omitempty"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// NewsInput is the partial payload accepted by create/update news calls.
type NewsInput struct {
	Title         string `json:"title,omitempty"`
	Content       string `json:"content,omitempty"`
	SourceWebsite string `json:"sourceWebsite,omitempty"`
	OriginalURL   string `json:"originalUrl,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
	CategoryID    int64  `json:"categoryId,omitempty"`
	Status        string `json:"status,omitempty"`
}

// Category groups news.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"isDefault"`
	CreatedBy   *int64    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summary is a generated abstract for a news item.
type Summary struct {
	ID             int64     `json:"id"`
	NewsID         int64     `json:"newsId"`
	SummaryContent string    `json:"summaryContent"`
	GeneratedAt    time.Time `json:"generatedAt"`
	ModelVersion   string    `json:"modelVersion,omitempty"`
	Status         string    `json:"status"`
}

// Comment is a reader comment on a news item.
type Comment struct {
	ID        int64     `json:"id"`
	NewsID    int64     `json:"newsId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentCreateRequest is the body of POST /comments.
type CommentCreateRequest struct {
	NewsID  int64  `json:"newsId"`
	Content string `json:"content"`
}

// Count is the {count} reply of counter endpoints.
type Count struct {
	Count int64 `json:"count"`
}

// LikeStatus is the {liked} reply of /likes/news/{id}/status.
type LikeStatus struct {
	Liked bool `json:"liked"`
}

// Page is a paged list reply.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
}

// PageQuery carries the common paging parameters.
type PageQuery struct {
	Page       int
	Size       int
	CategoryID int64
	Keyword    string
}

// ErrorResponse is the backend's error envelope.
type ErrorResponse struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Path      string            `json:"path"`
}

// User is an account stored by the dev server. Password hash is never exposed.
type User struct {
	ID        int64
	Username  string
	Email     string
	Role      Role
	PwdHash   []byte // Argon2id(password, SaltAuth)
	SaltAuth  []byte // per-user auth salt
	CreatedAt time.Time
}

// Identity projects a stored user onto the public identity record.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Role: u.Role, Email: u.Email}
}

// Tokens collects issued access/refresh tokens.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}
