package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 5 * 1024 * 1024 // 5MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// UploadCandidateImage handles POST /api/upload (admin only). The
// stored file gets a generated name and is served back under the
// public uploads path referenced by candidate photoUrl fields.
func UploadCandidateImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No file uploaded"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid file type. Only JPG, PNG, and WEBP are allowed",
		})
		return
	}

	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "File too large. Maximum size is 5MB",
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to upload file"})
		return
	}
	defer src.Close()

	filename := uploadStore.GenerateFilename(file.Filename)
	url, err := uploadStore.Save(filename, src)
	if err != nil {
		log.Printf("保存上传文件失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to upload file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"filename": filename,
			"url":      url,
			"size":     file.Size,
			"type":     contentType,
		},
	})
}
