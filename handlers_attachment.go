package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"econoplan/models"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxReceiptSize = 5 * 1024 * 1024

// uploadReceiptHandler attaches a receipt image to a transaction. Files land
// under <upload.base_dir>/<workspace_id>/ with a 256px thumbnail next to the
// original. One receipt per transaction; repeat uploads return the existing
// record.
func (a *App) uploadReceiptHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	transactionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var transaction models.Transaction
	if err := a.db.Where("id = ? AND workspace_id = ?", transactionID, workspaceID).
		First(&transaction).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}

	var existing models.Attachment
	if err := a.db.Where("transaction_id = ?", transactionID).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, existing)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > maxReceiptSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}

	dir := filepath.Join(a.cfg.Upload.BaseDir, workspaceID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	name := transactionID.String() + filepath.Ext(file.Filename)
	storePath := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, storePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	img, err := imaging.Open(storePath)
	if err != nil {
		_ = os.Remove(storePath)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image format"})
		return
	}
	thumbPath := filepath.Join(dir, "thumb_"+name)
	thumb := imaging.Fit(img, 256, 256, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath); err != nil {
		a.log.Warn().Err(err).Str("path", thumbPath).Msg("thumbnail generation failed")
		thumbPath = ""
	}

	attachment := models.Attachment{
		TransactionID: transactionID,
		WorkspaceID:   workspaceID,
		FileName:      file.Filename,
		StorePath:     storePath,
		ThumbPath:     thumbPath,
		ContentType:   file.Header.Get("Content-Type"),
		SizeBytes:     file.Size,
	}
	if err := a.db.Create(&attachment).Error; err != nil {
		// lost a concurrent upload race on the transaction_id unique index:
		// hand back the winner's record and drop our files
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var winner models.Attachment
			if err := a.db.Where("transaction_id = ?", transactionID).First(&winner).Error; err == nil {
				if storePath != winner.StorePath {
					_ = os.Remove(storePath)
				}
				if thumbPath != "" && thumbPath != winner.ThumbPath {
					_ = os.Remove(thumbPath)
				}
				c.JSON(http.StatusOK, winner)
				return
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

func (a *App) getReceiptHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	_, workspaceID, ok := a.workspaceScope(c, user)
	if !ok {
		return
	}
	transactionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var attachment models.Attachment
	if err := a.db.Where("transaction_id = ? AND workspace_id = ?", transactionID, workspaceID).
		First(&attachment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no receipt for this transaction"})
		return
	}
	c.JSON(http.StatusOK, attachment)
}
