package models

import "strings"

type DocumentStatus string

const (
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusReady      DocumentStatus = "ready"
	DocumentStatusFailed     DocumentStatus = "failed"
)

type FileCategory string

const (
	FileCategoryPDF FileCategory = "pdf"
	FileCategoryDoc FileCategory = "doc"
	FileCategoryXls FileCategory = "xls"
	FileCategoryPpt FileCategory = "ppt"
)

// StudyDocument is an entry in the student's document library.
type StudyDocument struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Title      string         `json:"title"`
	Subject    string         `json:"subject"`
	FileURL    string         `json:"file_url"`
	FileType   string         `json:"file_type"`
	UploadDate string         `json:"upload_date"`
	Status     DocumentStatus `json:"status"`
	Size       string         `json:"size"`
}

// Category groups the document's file type for icon rendering.
func (d StudyDocument) Category() FileCategory {
	return FileCategoryOf(d.FileType)
}

// FileCategoryOf maps a file extension onto one of the rendered categories.
// Unknown types render as documents.
func FileCategoryOf(fileType string) FileCategory {
	switch strings.ToLower(fileType) {
	case "pdf":
		return FileCategoryPDF
	case "doc", "docx":
		return FileCategoryDoc
	case "xls", "xlsx":
		return FileCategoryXls
	case "ppt", "pptx":
		return FileCategoryPpt
	default:
		return FileCategoryDoc
	}
}
