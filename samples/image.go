/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package samples

import (
	"time"

	"github.com/suparena/docmapper/model"
)

// Image describes a stored file. Metadata is kept as a free-form document.
type Image struct {
	model.Base `mapstructure:",squash"`

	ID          string         `mapstructure:"_id"`
	Filename    string         `mapstructure:"filename" valid:"required"`
	ContentType string         `mapstructure:"content_type,omitempty"`
	Length      int64          `mapstructure:"length,omitempty"`
	Checksum    string         `mapstructure:"checksum,omitempty"`
	UploadDate  *time.Time     `mapstructure:"upload_date,omitempty"`
	Metadata    map[string]any `mapstructure:"metadata,omitempty" valid:"-"`
}

// NewImage returns an empty Image.
func NewImage() *Image {
	return &Image{}
}

func (i *Image) ValidateAttributes(errs *model.Errors) {
	if i.Length < 0 {
		errs.Add("length", "length must not be negative")
	}
}
