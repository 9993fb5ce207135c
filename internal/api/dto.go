package api

import "github.com/starford/txtshelf/internal/models"

// CreateFileRequest is the request body for creating a file. Filename is
// the name without the .txt extension.
type CreateFileRequest struct {
	Filename string `json:"filename" example:"groceries"`
	Content  string `json:"content" example:"milk\neggs"`
}

// RenameFileRequest is the request body for renaming a file.
type RenameFileRequest struct {
	NewFilename string `json:"newFilename" example:"shopping"`
}

// FileListResponse wraps the file listing.
type FileListResponse struct {
	Files []models.FileInfo `json:"files"`
	Total int               `json:"total" example:"3"`
}

// FileResponse is a file with its content.
type FileResponse = models.File

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Name    string `json:"name" example:"groceries.txt"`
	Title   string `json:"title" example:"Groceries"`
	Snippet string `json:"snippet" example:"...milk..."`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// MessageResponse is returned by the form-compatible mutation routes.
type MessageResponse struct {
	Message string `json:"message" example:"File deleted successfully"`
}
