package dto

import (
	"mime/multipart"
)

type UploadImageRequest struct {
	Image     *multipart.FileHeader `json:"image" swaggerignore:"true" validate:"required,mimetypes=image/png image/jpg image/jpeg,maxfilesize=5"`
	ImageFile multipart.File        `json:"-"`
}

type UploadImageResponse struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

func (r *UploadImageResponse) FromModel(url, fileName string, width, height int) {
	r.URL = url
	r.FileName = fileName
	r.Width = width
	r.Height = height
}

type DeleteImagesRequest struct {
	ImageURLs []string `json:"imageUrls" validate:"required,min=1,dive,url"`
}
