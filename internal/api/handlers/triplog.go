package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/langchou/evcompare/internal/triplog"
)

const (
	maxTripLogFiles    = 64
	maxTripLogFileSize = 32 << 20
)

// UploadTripLogs 汇总上传的位置历史文件
// POST /api/triplogs (multipart, 字段 files)
// 单个文件解析失败只产生警告
func (h *Handler) UploadTripLogs(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}
	if len(headers) > maxTripLogFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Too many files (max %d)", maxTripLogFiles)})
		return
	}

	files := make([]triplog.File, 0, len(headers))
	var unreadable []triplog.FileError
	for _, fh := range headers {
		data, err := readUpload(fh)
		if err != nil {
			unreadable = append(unreadable, triplog.FileError{Name: fh.Filename, Err: err})
			continue
		}
		files = append(files, triplog.File{Name: fh.Filename, Data: data})
	}

	summary := h.comparison.AggregateTripLogs(files)
	summary.AddFileErrors(unreadable)

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxTripLogFileSize {
		return nil, fmt.Errorf("file too large (%d bytes)", fh.Size)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxTripLogFileSize))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
