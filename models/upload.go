package models

// UploadKind decides the folder an upload lands in and who may create it.
type UploadKind string

const (
	UploadServiceImage    UploadKind = "service_image"
	UploadCompletionPhoto UploadKind = "completion_photo"
	UploadProfileImage    UploadKind = "profile_image"
)

func (k UploadKind) IsValid() bool {
	switch k {
	case UploadServiceImage, UploadCompletionPhoto, UploadProfileImage:
		return true
	}
	return false
}

// Upload is a stored media asset.
type Upload struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
	Format   string `json:"format,omitempty"`
	Bytes    int    `json:"bytes"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}
