package utils

import (
	"errors"
	"fmt"

	"easybook/config"

	"github.com/cloudinary/cloudinary-go/v2"
)

// ErrCloudinaryDisabled is returned when CLOUDINARY_URL is empty.
var ErrCloudinaryDisabled = errors.New("cloudinary: CLOUDINARY_URL not set")

// Cloudinary initializes a Cloudinary client from the cloudinary:// URL in configuration.
func Cloudinary() (*cloudinary.Cloudinary, error) {
	if config.AppConfig.CloudinaryURL == "" {
		return nil, ErrCloudinaryDisabled
	}
	cld, err := cloudinary.NewFromURL(config.AppConfig.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}
	return cld, nil
}
