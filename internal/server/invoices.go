package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/llm"
)

const formFileField = "pdfFile"

type textUploadRequest struct {
	InvoiceText string `json:"invoiceText"`
	KitchenID   string `json:"kitchenId"`
}

type commitRequest struct {
	Items     []entity.CommitRow `json:"items"`
	KitchenID string             `json:"kitchenId"`
}

// uploadInvoice accepts a multipart PDF or a JSON body of pasted text.
func (s *Server) uploadInvoice(c *gin.Context) {
	var (
		in        llm.Input
		kitchenID string
		err       error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		in, kitchenID, err = s.readMultipartInvoice(c)
	} else {
		var req textUploadRequest
		if err = c.ShouldBindJSON(&req); err != nil {
			err = badRequest(err)
		}
		in, kitchenID = llm.Input{Text: req.InvoiceText}, req.KitchenID
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	kid, err := requiredUUID("kitchenId", kitchenID)
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.deps.Invoices.Run(c.Request.Context(), userID(c), kid, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"itemsFound": len(res.Items),
		"items":      res.Items,
	})
}

func (s *Server) readMultipartInvoice(c *gin.Context) (llm.Input, string, error) {
	limit := s.deps.MaxUploadBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fh, err := c.FormFile(formFileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return llm.Input{}, "", common.ValidationErrorf("file size must be at most %d MB", limit>>20)
		}
		return llm.Input{}, "", common.ValidationErrorf("a PDF file is required in %q", formFileField)
	}
	if fh.Size > limit {
		return llm.Input{}, "", common.ValidationErrorf("file size must be at most %d MB", limit>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return llm.Input{}, "", common.InternalErrorf(err, "failed to read upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return llm.Input{}, "", common.InternalErrorf(err, "failed to read upload")
	}
	if len(data) == 0 {
		return llm.Input{}, "", common.ValidationErrorf("uploaded file is empty")
	}
	return llm.Input{
		Document:  data,
		MediaType: fh.Header.Get("Content-Type"),
		Filename:  fh.Filename,
	}, c.PostForm("kitchenId"), nil
}

func (s *Server) commitInvoice(c *gin.Context) {
	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	kid, err := requiredUUID("kitchenId", req.KitchenID)
	if err != nil {
		s.fail(c, err)
		return
	}
	n, err := s.deps.Committer.Commit(c.Request.Context(), userID(c), kid, req.Items)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"itemsAdded": n,
		"message":    fmt.Sprintf("added %d item(s) to your kitchen", n),
	})
}
