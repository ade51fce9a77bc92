// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package backend

// UploadField is the multipart field carrying the video.
const UploadField = "video"

// UploadResponse is the success payload of POST /upload.
type UploadResponse struct {
	Filename string `json:"filename"`
	VideoURL string `json:"videoUrl"`
}

// ROI is a rectangle in native video pixels.
type ROI struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ProcessRequest is the JSON body of POST /process. ROI is omitted for
// flows where the backend detects the region itself.
type ProcessRequest struct {
	Filename string `json:"filename"`
	ROI      *ROI   `json:"roi,omitempty"`
	Method   string `json:"method"`
	Quality  string `json:"quality"`
}

// ProcessResponse is the success payload of POST /process.
type ProcessResponse struct {
	VideoURL       string `json:"videoUrl"`
	DownloadURL    string `json:"downloadUrl"`
	OutputFilename string `json:"outputFilename"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ProgressFunc receives the number of request bytes written so far and the
// total request size.
type ProgressFunc func(sent, total int64)
