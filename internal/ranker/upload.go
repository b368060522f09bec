package ranker

import (
	"context"
)

const (
	resumesField        = "resumes"
	jobDescriptionField = "job_description"
)

type UploadResponse struct {
	Message string `json:"message"`
}

// UploadResumes posts all files and the job description as one multipart
// request and returns the service status message.
func (c *Client) UploadResumes(ctx context.Context, files []File, jobDescription string) (string, error) {
	fields := map[string]string{
		jobDescriptionField: jobDescription,
	}

	var response UploadResponse
	if err := c.postMultipart(ctx, UploadPath, resumesField, files, fields, &response); err != nil {
		return "", err
	}

	return response.Message, nil
}
