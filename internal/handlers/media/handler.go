package media

import (
	"context"
	"net/http"
	"taskboard/infras/otel"
	"taskboard/internal/domains/media/model/dto"
	"taskboard/internal/domains/media/service"
	"taskboard/shared"
	"taskboard/shared/constant"
	"taskboard/shared/failure"
	"taskboard/shared/validator"
	"taskboard/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const formFieldImage = "image"

type Handler struct {
	service service.Media
	otel    otel.Otel
}

func New(service service.Media, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/infra", func(r chi.Router) {
		r.Post("/images", handler.UploadImage)
		r.Delete("/images", handler.DeleteImages)
	})
}

func (handler *Handler) scope(r *http.Request, op string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+op)
}

// UploadImage handles image upload to S3.
// @Summary Upload an image
// @Description Accepts a png or jpeg up to 5 MB, crops it to a 250x250 square and stores it.
// @Tags Infra
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file to upload"
// @Success 201 {object} response.Data[dto.UploadImageResponse] "Image uploaded successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/infra/images [post]
// @Security BearerAuth
func (handler *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "UploadImage")
	defer scope.End()

	req, err := imageFromForm(r)
	if err != nil {
		response.Fail(w, scope, err, "failed to read multipart form")

		return
	}
	defer req.ImageFile.Close()

	if err := validator.ValidateStruct(&req); err != nil {
		response.Fail(w, scope, err, "failed to validate request")

		return
	}

	res, err := handler.service.UploadImage(ctx, req)
	if err != nil {
		response.Fail(w, scope, err, "failed to upload file")

		return
	}

	scope.AddEvent("Image uploaded successfully by user " + shared.UserIDFromContext(ctx))

	response.WithData(w, http.StatusCreated, res, "Image uploaded successfully")
}

// DeleteImages removes uploaded images by their public URLs.
// @Summary Delete images
// @Description Only images uploaded by the caller can be deleted.
// @Tags Infra
// @Accept json
// @Produce json
// @Param request body dto.DeleteImagesRequest true "Delete Images Request"
// @Success 200 {object} response.Message "Images deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/infra/images [delete]
// @Security BearerAuth
func (handler *Handler) DeleteImages(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "DeleteImages")
	defer scope.End()

	req := dto.DeleteImagesRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	if err := handler.service.DeleteImages(ctx, req); err != nil {
		response.Fail(w, scope, err, "failed to delete images")

		return
	}

	scope.AddEvent("Images deleted successfully by user " + shared.UserIDFromContext(ctx))

	response.WithMessage(w, http.StatusOK, "Images deleted successfully")
}

// imageFromForm reads the image part of a multipart upload. The caller closes
// the returned file.
func imageFromForm(r *http.Request) (dto.UploadImageRequest, error) {
	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		log.Debug().Err(err).Msg("Unreadable multipart form")

		return dto.UploadImageRequest{}, failure.BadRequestFromString("request must be multipart/form-data")
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		return dto.UploadImageRequest{}, failure.BadRequestFromString("image is required")
	}

	return dto.UploadImageRequest{Image: header, ImageFile: file}, nil
}
