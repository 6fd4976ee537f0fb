package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "taskboard.com/taskboard/internal/data_models"
	apperrors "taskboard.com/taskboard/internal/errors"
	"taskboard.com/taskboard/internal/services"
)

func (h *Handler) GetProfile(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.profileService.GetProfile(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.UserEnvelope{
		User: dto.NewUserResponse(user),
		Msg:  "Profile found successfully",
	})
}

func (h *Handler) UpdateAvatar(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return apperrors.ErrAvatarRequired
		}
		return apperrors.Validation("invalid multipart payload")
	}

	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	user, err := h.profileService.UpdateAvatar(c.Request().Context(), identity, services.AvatarUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.UserEnvelope{
		User: dto.NewUserResponse(user),
		Msg:  "Avatar updated successfully",
	})
}

func (h *Handler) RemoveAvatar(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.profileService.RemoveAvatar(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.UserEnvelope{
		User: dto.NewUserResponse(user),
		Msg:  "Avatar removed successfully",
	})
}
