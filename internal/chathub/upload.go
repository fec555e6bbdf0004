package chathub

import (
	"context"
	"encoding/base64"
	"strings"

	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/models"

	"github.com/dustin/go-humanize"
)

// Upload decodes a base64 file and posts it as an image or file message.
// The file travels inline as a data URL in the message metadata.
func (m *ManagerService) Upload(ctx context.Context, u models.Upload) (models.Message, error) {
	if err := u.Validate(); err != nil {
		return models.Message{}, err
	}
	if !m.settings.AllowMedia {
		return models.Message{}, apperr.InvalidInput("media uploads are disabled")
	}

	payload := u.File
	if i := strings.Index(payload, ";base64,"); strings.HasPrefix(payload, "data:") && i >= 0 {
		payload = payload[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return models.Message{}, apperr.InvalidInput("file is not valid base64")
	}
	size := int64(len(data))
	if size > m.settings.MaxFileSize {
		return models.Message{}, apperr.InvalidInput("file is %s, the limit is %s",
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(m.settings.MaxFileSize)))
	}

	username := config.DefaultUsername
	if user, err := m.GetUser(u.UserID); err == nil && user.Username != "" {
		username = user.Username
	}

	return m.PostMessage(ctx, models.PostMessage{
		RoomID:   u.RoomID,
		UserID:   u.UserID,
		Username: username,
		Body:     u.Filename,
		Type:     u.MessageKind(),
		Metadata: map[string]any{
			"filename": u.Filename,
			"fileType": u.FileType,
			"fileSize": size,
			"url":      "data:" + u.FileType + ";base64," + payload,
		},
	})
}
