package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/vipani/app/services"
)

// maxUploadBytes caps a multipart request body (fields + files).
const maxUploadBytes = 10 << 20 // 10 MB

// parseProductInput decodes a create/update request body into a
// ProductInput. Clients send either multipart/form-data (fields title,
// description, category_id, price, quantity, imageUrl, profileUrl and files
// image, profileImage) or a plain JSON object with the same field names.
//
// The errs map collects field-level problems (malformed numbers, negative
// values); a non-nil error means the body itself was unreadable.
func parseProductInput(r *http.Request) (services.ProductInput, map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if strings.HasPrefix(mediaType, "multipart/") {
		return parseMultipart(r)
	}
	return parseJSON(r)
}

func parseMultipart(r *http.Request) (services.ProductInput, map[string]string, error) {
	var in services.ProductInput
	errs := map[string]string{}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return in, nil, fmt.Errorf("invalid multipart body: %w", err)
	}

	in.Title = r.FormValue("title")
	in.Description = r.FormValue("description")
	in.CategoryID = r.FormValue("category_id")
	in.ImageURL = r.FormValue("imageUrl")
	in.ProfileURL = r.FormValue("profileUrl")

	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		switch {
		case err != nil:
			errs["price"] = "must be a number"
		case price < 0:
			errs["price"] = "must not be negative"
		default:
			in.Price = price
		}
	}

	if raw := r.FormValue("quantity"); raw != "" {
		quantity, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs["quantity"] = "must be an integer"
		case quantity < 0:
			errs["quantity"] = "must not be negative"
		default:
			in.Quantity = quantity
		}
	}

	var err error
	if in.Image, err = readUpload(r, "image"); err != nil {
		return in, nil, err
	}
	if in.ProfileImage, err = readUpload(r, "profileImage"); err != nil {
		return in, nil, err
	}

	return in, errs, nil
}

// readUpload pulls one named file out of the multipart form. A missing file
// is not an error.
func readUpload(r *http.Request, field string) (*services.Upload, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %w", field, err)
	}

	return &services.Upload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: uploadContentType(header),
	}, nil
}

func uploadContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func parseJSON(r *http.Request) (services.ProductInput, map[string]string, error) {
	var body struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		CategoryID  string  `json:"category_id"`
		Price       float64 `json:"price"`
		Quantity    int     `json:"quantity"`
		ImageURL    string  `json:"imageUrl"`
		ProfileURL  string  `json:"profileUrl"`
	}

	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxUploadBytes)).Decode(&body); err != nil {
		return services.ProductInput{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	errs := map[string]string{}
	if body.Price < 0 {
		errs["price"] = "must not be negative"
	}
	if body.Quantity < 0 {
		errs["quantity"] = "must not be negative"
	}

	return services.ProductInput{
		Title:       body.Title,
		Description: body.Description,
		CategoryID:  body.CategoryID,
		Price:       body.Price,
		Quantity:    body.Quantity,
		ImageURL:    body.ImageURL,
		ProfileURL:  body.ProfileURL,
	}, errs, nil
}

// validateCreate adds the fields a create cannot do without.
func validateCreate(in services.ProductInput, errs map[string]string) {
	if in.Title == "" {
		errs["title"] = "is required"
	}
	if in.CategoryID == "" {
		errs["category_id"] = "is required"
	}
}
