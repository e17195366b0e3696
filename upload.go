package pushbullet

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// UploadRequest prepares a file for pushing. It requests an upload slot,
// streams the file to it as multipart form data, and returns the file
// metadata to reference in a File push. The file bytes are streamed, so
// large files are not held in memory.
func (c *Client) UploadRequest(ctx context.Context, fileName, fileType string, r io.Reader) (*Upload, error) {
	reqBody := struct {
		FileName string `json:"file_name"`
		FileType string `json:"file_type"`
	}{fileName, fileType}

	var slot uploadSlot
	if err := c.call(ctx, http.MethodPost, "/upload-request", reqBody, &slot); err != nil {
		return nil, fmt.Errorf("error requesting upload slot: %w", err)
	}

	if err := c.uploadTo(ctx, &slot, r); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	return &Upload{
		FileName: slot.FileName,
		FileType: slot.FileType,
		FileURL:  slot.FileURL,
	}, nil
}

// PushFile uploads a file and pushes it to a target in one call.
func (c *Client) PushFile(ctx context.Context, target PushTarget, body, fileName, fileType string, r io.Reader) error {
	upload, err := c.UploadRequest(ctx, fileName, fileType, r)
	if err != nil {
		return err
	}

	return c.Push(ctx, target, File{
		Body:     body,
		FileName: upload.FileName,
		FileType: upload.FileType,
		FileURL:  upload.FileURL,
	})
}

// uploadTo streams r to the slot's upload URL as a "file" form field. The
// multipart body is produced through a pipe so the request and the encoding
// run concurrently.
func (c *Client) uploadTo(ctx context.Context, slot *uploadSlot, r io.Reader) error {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreatePart(fileHeader(slot.FileName, slot.FileType))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	resp, err := c.doRequest(ctx, http.MethodPost, slot.UploadURL, pr, writer.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, nil)
}

// fileHeader builds the part header for the upload, preserving the MIME
// type assigned by the upload slot.
func fileHeader(fileName, fileType string) textproto.MIMEHeader {
	quoteEscaper := strings.NewReplacer("\\", "\\\\", `"`, `\"`)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(fileName)))
	if fileType != "" {
		h.Set("Content-Type", fileType)
	}
	return h
}
