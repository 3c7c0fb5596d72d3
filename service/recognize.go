package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"solarops/audit"
	"solarops/config"
	"solarops/dao/model"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Recognizer extracts text from one stored file.
type Recognizer interface {
	Recognize(ctx context.Context, fileID string) (string, error)
}

// RecognizeClient calls the external document-recognition API.
type RecognizeClient struct {
	apiURL       string
	apiToken     string
	modelVersion string
	httpClient   *http.Client
}

func NewRecognizeClient(cfg *config.Config) *RecognizeClient {
	return &RecognizeClient{
		apiURL:       cfg.Recognize.APIURL,
		apiToken:     cfg.Recognize.APIToken,
		modelVersion: cfg.Recognize.ModelVersion,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Recognize.TimeoutSeconds) * time.Second,
		},
	}
}

type recognizeAPIReq struct {
	FileID       string `json:"file_id"`
	ModelVersion string `json:"model_version,omitempty"`
}

type recognizeAPIResp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Text string `json:"text"`
	} `json:"data"`
}

func (c *RecognizeClient) Recognize(ctx context.Context, fileID string) (string, error) {
	body, err := json.Marshal(recognizeAPIReq{FileID: fileID, ModelVersion: c.modelVersion})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/recognize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("recognition API returned %d: %s", resp.StatusCode, string(raw))
	}

	var apiResp recognizeAPIResp
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Code != 0 {
		return "", fmt.Errorf("recognition failed: %s", apiResp.Msg)
	}
	return apiResp.Data.Text, nil
}

// RecognizeItem pairs a document with the file to recognize.
type RecognizeItem struct {
	DocumentID uint
	FileID     string
}

// RecognizeItemResult is the per-item outcome; a failed item never
// aborts the batch.
type RecognizeItemResult struct {
	DocumentID uint   `json:"documentId"`
	Text       string `json:"-"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// RunBatch fans items out to the recognizer with a fixed concurrency
// cap. Cancelling the context stops issuing new requests; requests
// already in flight run to completion.
func RunBatch(ctx context.Context, rec Recognizer, items []RecognizeItem, maxConcurrent int) []RecognizeItemResult {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	results := make([]RecognizeItemResult, len(items))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			// Stop issuing: remaining items report the cancellation.
			for j := i; j < len(items); j++ {
				results[j] = RecognizeItemResult{DocumentID: items[j].DocumentID, Error: err.Error()}
			}
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, item RecognizeItem) {
			defer wg.Done()
			defer func() { <-sem }()

			text, err := rec.Recognize(ctx, item.FileID)
			if err != nil {
				results[i] = RecognizeItemResult{DocumentID: item.DocumentID, Error: err.Error()}
				return
			}
			results[i] = RecognizeItemResult{DocumentID: item.DocumentID, Text: text, OK: true}
		}(i, item)
	}

	wg.Wait()
	return results
}

// RecognizeHandler runs batch OCR over stored documents.
type RecognizeHandler struct {
	db            *gorm.DB
	log           audit.Recorder
	recognizer    Recognizer
	maxConcurrent int
}

func NewRecognizeHandler(db *gorm.DB, log audit.Recorder, rec Recognizer, maxConcurrent int) *RecognizeHandler {
	return &RecognizeHandler{db: db, log: log, recognizer: rec, maxConcurrent: maxConcurrent}
}

func (h *RecognizeHandler) Register(g *gin.RouterGroup) {
	g.POST("/batch/recognize", h.Batch)
}

type recognizeBatchReq struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

func (h *RecognizeHandler) Batch(c *gin.Context) {
	var req recognizeBatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var docs []model.Document
	err := h.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", req.IDs, false).
		Find(&docs).Error
	if err != nil {
		dbError(c, err)
		return
	}

	byID := map[uint]*model.Document{}
	items := make([]RecognizeItem, 0, len(docs))
	skipped := make([]RecognizeItemResult, 0)
	for i := range docs {
		d := &docs[i]
		if d.DriveFileID == nil || *d.DriveFileID == "" {
			skipped = append(skipped, RecognizeItemResult{DocumentID: d.ID, Error: "document has no stored file"})
			continue
		}
		byID[d.ID] = d
		items = append(items, RecognizeItem{DocumentID: d.ID, FileID: *d.DriveFileID})
	}

	results := RunBatch(ctx, h.recognizer, items, h.maxConcurrent)

	actor := actorID(c)
	for i := range results {
		r := &results[i]
		if !r.OK {
			continue
		}
		d := byID[r.DocumentID]
		old := *d
		d.OCRText = &r.Text
		if err := h.db.WithContext(ctx).Save(d).Error; err != nil {
			r.OK = false
			r.Error = err.Error()
			continue
		}
		audit.RecordBestEffort(ctx, h.log, audit.Entry{
			Table:    string(model.TableDocuments),
			RecordID: d.ID,
			Action:   model.ActionUpdate,
			ActorID:  actor,
			OldData:  old,
			NewData:  *d,
		})
	}

	response.Success(c, append(results, skipped...))
}
