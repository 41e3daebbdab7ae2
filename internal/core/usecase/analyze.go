package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/core/ports"
)

const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
)

// AnalyzeDocumentUseCase uploads a document, asks the model to classify it and
// records both steps in the audit trail.
type AnalyzeDocumentUseCase struct {
	uow       ports.UnitOfWorkFactory
	storage   ports.BlobStorage
	builder   *RequestBuilder
	model     ports.ModelClient
	validator ports.ResultValidator
	publisher ports.HistoryPublisher
	observer  ports.AnalysisObserver
	logger    *slog.Logger
}

type AnalyzeOption func(*AnalyzeDocumentUseCase)

func WithResultValidator(v ports.ResultValidator) AnalyzeOption {
	return func(uc *AnalyzeDocumentUseCase) { uc.validator = v }
}

func WithHistoryPublisher(p ports.HistoryPublisher) AnalyzeOption {
	return func(uc *AnalyzeDocumentUseCase) { uc.publisher = p }
}

func WithAnalysisObserver(o ports.AnalysisObserver) AnalyzeOption {
	return func(uc *AnalyzeDocumentUseCase) { uc.observer = o }
}

func WithLogger(l *slog.Logger) AnalyzeOption {
	return func(uc *AnalyzeDocumentUseCase) {
		if l != nil {
			uc.logger = l
		}
	}
}

func NewAnalyzeDocumentUseCase(
	uow ports.UnitOfWorkFactory,
	storage ports.BlobStorage,
	builder *RequestBuilder,
	model ports.ModelClient,
	opts ...AnalyzeOption,
) *AnalyzeDocumentUseCase {
	uc := &AnalyzeDocumentUseCase{
		uow:     uow,
		storage: storage,
		builder: builder,
		model:   model,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *AnalyzeDocumentUseCase) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	started := time.Now()
	result, err := uc.analyze(ctx, req)
	if uc.observer != nil {
		uc.observer.ObserveAnalysis(req.FileKind, analysisOutcome(err), time.Since(started))
	}
	if err != nil {
		uc.logger.Error("analysis_failed", "file_kind", string(req.FileKind), "error", err.Error())
		return nil, err
	}
	return result, nil
}

func (uc *AnalyzeDocumentUseCase) analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	data, err := validateAnalysisRequest(req)
	if err != nil {
		return nil, err
	}

	uow, err := uc.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Close()

	fileName, uploadErr := uc.storage.Upload(ctx, ports.BlobUpload{
		Data:        data,
		ContentType: req.MediaTypeName,
		Extension:   req.Extension(),
	})
	if uploadErr != nil {
		fileName = ""
	}
	uploadEntry := &domain.HistoricalEntry{Type: domain.HistoricalDocumentUpload, Description: fileName}
	if err := uow.History().Add(ctx, uploadEntry); err != nil {
		return nil, fmt.Errorf("stage upload entry: %w", err)
	}
	if uploadErr != nil {
		uc.flush(ctx, uow)
		return nil, uploadErr
	}

	result, err := uc.requestAnalysis(ctx, req, fileName)
	if err != nil {
		uc.flush(ctx, uow)
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		uc.flush(ctx, uow)
		return nil, fmt.Errorf("encode analysis result: %w", err)
	}
	analysisEntry := &domain.HistoricalEntry{Type: domain.HistoricalAIAnalysis, Description: string(payload)}
	if err := uow.History().Add(ctx, analysisEntry); err != nil {
		uc.flush(ctx, uow)
		return nil, fmt.Errorf("stage analysis entry: %w", err)
	}

	if _, err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit analysis history: %w", err)
	}
	uc.publish(ctx, *uploadEntry, *analysisEntry)
	return &result, nil
}

func (uc *AnalyzeDocumentUseCase) requestAnalysis(ctx context.Context, req domain.AnalysisRequest, fileName string) (domain.AnalysisResult, error) {
	modelReq, err := uc.builder.Build(ctx, req)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	resp, err := uc.model.Analyze(ctx, modelReq)
	if err != nil {
		uc.observeModelCall(OutcomeFailed)
		return domain.AnalysisResult{}, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		uc.observeModelCall(OutcomeEmpty)
		return domain.AnalysisResult{}, fmt.Errorf("request analysis: %w", domain.ErrNoModelResponse)
	}
	uc.observeModelCall(OutcomeSuccess)

	result, err := ParseAnalysis(resp.Choices[0].Message.Content, fileName)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	if uc.validator != nil {
		if problems := uc.validator.Validate(result); len(problems) > 0 {
			uc.logger.Warn("analysis_result_schema_mismatch",
				"file_name", fileName,
				"document_type", string(result.DocumentType),
				"problems", strings.Join(problems, "; "),
			)
		}
	}
	return result, nil
}

// flush commits whatever is staged so the upload stays auditable when the pipeline fails.
func (uc *AnalyzeDocumentUseCase) flush(ctx context.Context, uow ports.UnitOfWork) {
	if _, err := uow.Commit(ctx); err != nil {
		uc.logger.Warn("history_flush_failed", "error", err.Error())
	}
}

func (uc *AnalyzeDocumentUseCase) publish(ctx context.Context, entries ...domain.HistoricalEntry) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishHistoryAppended(ctx, entries); err != nil {
		uc.logger.Warn("history_publish_failed", "error", err.Error())
	}
}

func (uc *AnalyzeDocumentUseCase) observeModelCall(outcome string) {
	if uc.observer != nil {
		uc.observer.ObserveModelCall(outcome)
	}
}

func validateAnalysisRequest(req domain.AnalysisRequest) ([]byte, error) {
	const op = "validate analysis request"
	if req.FileKind != domain.FileKindPdf && req.FileKind != domain.FileKindImage {
		return nil, domain.WrapError(domain.ErrInvalidInput, op, domain.ErrUnknownFileKind)
	}
	payload := strings.TrimSpace(req.Base64File)
	if payload == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, op, domain.ErrEmptyFile)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("%w: %v", domain.ErrInvalidBase64, err))
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, op, domain.ErrEmptyFile)
	}
	return data, nil
}

func analysisOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case domain.IsKind(err, domain.ErrInvalidInput):
		return OutcomeRejected
	case domain.IsKind(err, domain.ErrNoModelResponse):
		return OutcomeEmpty
	case domain.IsKind(err, domain.ErrMalformedModelReply):
		return OutcomeMalformed
	default:
		return OutcomeFailed
	}
}
