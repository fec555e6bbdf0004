package models

import (
	"strings"

	"roomchat/backend/internal/apperr"
)

// Upload carries a base64 encoded file to be posted as a media message.
type Upload struct {
	File     string `json:"file" binding:"required"`
	Filename string `json:"filename" binding:"required"`
	FileType string `json:"fileType" binding:"required"`
	UserID   string `json:"userId" binding:"required"`
	RoomID   string `json:"roomId" binding:"required"`
}

func (u Upload) Validate() error {
	switch {
	case u.File == "":
		return apperr.InvalidInput("file is required")
	case strings.TrimSpace(u.Filename) == "":
		return apperr.InvalidInput("filename is required")
	case strings.TrimSpace(u.FileType) == "":
		return apperr.InvalidInput("fileType is required")
	case strings.TrimSpace(u.UserID) == "":
		return apperr.InvalidInput("userId is required")
	case strings.TrimSpace(u.RoomID) == "":
		return apperr.InvalidInput("roomId is required")
	}
	return nil
}

// MessageKind is image for image content types and file otherwise.
func (u Upload) MessageKind() MessageKind {
	if strings.Contains(strings.ToLower(u.FileType), "image") {
		return KindImage
	}
	return KindFile
}
