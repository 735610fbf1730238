package types

import "github.com/google/uuid"

// RegisterRequest is the normalised registration input
type RegisterRequest struct {
	Username    string   `form:"username" json:"username" binding:"required,min=3,max=50"`
	Email       string   `form:"email" json:"email" binding:"required,email"`
	Password    string   `form:"password" json:"password" binding:"required,min=8"`
	Country     string   `form:"country" json:"country"`
	Preferences []string `form:"preferences" json:"preferences"`
}

// LoginRequest accepts a username or an email as identifier
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier" binding:"required"`
	Password   string `form:"password" json:"password" binding:"required"`
}

// UpdateProfileRequest holds optional profile edits. A profile image, when
// present, arrives as a multipart file.
type UpdateProfileRequest struct {
	Username *string `form:"username" json:"username,omitempty" binding:"omitempty,min=3,max=50"`
	Bio      *string `form:"bio" json:"bio,omitempty"`
	About    *string `form:"about" json:"about,omitempty"`
}

// ChangePasswordRequest replaces the credential after checking the old one
type ChangePasswordRequest struct {
	OldPassword string `form:"old_password" json:"old_password" binding:"required"`
	NewPassword string `form:"new_password" json:"new_password" binding:"required,min=8"`
}

// TargetUserRequest names the other side of a follow edge
type TargetUserRequest struct {
	TargetUserID string `form:"target_user_id" json:"target_user_id" binding:"required,uuid"`
}

// PostRequest names a recipe anywhere in the store
type PostRequest struct {
	PostID string `form:"post_id" json:"post_id" binding:"required,uuid"`
}

// BatchUserInfoRequest asks for several user cards at once
type BatchUserInfoRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required,max=100"`
}
