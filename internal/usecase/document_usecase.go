package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/antivirus"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/audit"
	"go-occupational-backend/pkg/logger"
	"go-occupational-backend/pkg/storage"
	"go-occupational-backend/pkg/upload"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type documentUsecase struct {
	docRepo       domain.DocumentRepository
	candidateRepo domain.CandidateRepository
	catalogRepo   domain.CatalogRepository
	store         storage.ObjectStore
	scanner       antivirus.Scanner
	auditor       Auditor
	validate      *validator.Validate
	maxBytes      int64
	now           func() time.Time
}

// NewDocumentUsecase wires candidate document validation. store may be nil when object storage is not configured,
// scanner may be nil when no antivirus daemon is available.
func NewDocumentUsecase(
	docRepo domain.DocumentRepository,
	candidateRepo domain.CandidateRepository,
	catalogRepo domain.CatalogRepository,
	store storage.ObjectStore,
	scanner antivirus.Scanner,
	auditor Auditor,
	validate *validator.Validate,
	maxBytes int64,
) domain.DocumentUsecase {
	return &documentUsecase{
		docRepo:       docRepo,
		candidateRepo: candidateRepo,
		catalogRepo:   catalogRepo,
		store:         store,
		scanner:       scanner,
		auditor:       auditor,
		validate:      validate,
		maxBytes:      maxBytes,
		now:           time.Now,
	}
}

func (u *documentUsecase) candidate(ctx context.Context, id int64) (*domain.Candidate, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	c, err := u.candidateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "candidate not found")
	}
	if requireCompanyAccess(v, c.CompanyID) != nil {
		return nil, apperror.NotFound("candidate not found")
	}
	return c, nil
}

func (u *documentUsecase) document(ctx context.Context, id int64) (*domain.CandidateDocument, error) {
	doc, err := u.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "document not found")
	}
	if _, err := u.candidate(ctx, doc.CandidateID); err != nil {
		if apperror.StatusOf(err) == http.StatusNotFound {
			return nil, apperror.NotFound("document not found")
		}
		return nil, err
	}
	return doc, nil
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return apperror.New(http.StatusRequestEntityTooLarge, err.Error(), err)
	case errors.Is(err, upload.ErrEmpty), errors.Is(err, upload.ErrExtension):
		return apperror.BadRequest(fmt.Sprintf("%s (allowed: %s)", err.Error(), strings.Join(upload.AllowedExtensions(), ", ")))
	case errors.Is(err, upload.ErrSpoofed), errors.Is(err, upload.ErrContentType):
		return apperror.BadRequest(err.Error())
	}
	return apperror.Internal(err)
}

// Upload stores a candidate document. A pending or rejected upload of the same type is replaced.
func (u *documentUsecase) Upload(ctx context.Context, in domain.UploadInput) (*domain.CandidateDocument, error) {
	if u.store == nil {
		return nil, apperror.Unavailable("File storage is not configured", storage.ErrNotConfigured)
	}
	c, err := u.candidate(ctx, in.CandidateID)
	if err != nil {
		return nil, err
	}
	if _, err := u.catalogRepo.FindRequirement(ctx, c.CandidateTypeID, in.DocumentTypeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.BadRequest("document type is not required for this candidate type")
		}
		return nil, apperror.Internal(err)
	}

	res, err := upload.Validate(in.FileName, in.Data, u.maxBytes)
	if err != nil {
		return nil, uploadError(err)
	}
	if err := u.scan(ctx, c.ID, in); err != nil {
		return nil, err
	}

	previous, err := u.docRepo.LatestByType(ctx, c.ID, in.DocumentTypeID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	key := fmt.Sprintf("candidates/%d/%s%s", c.ID, uuid.NewString(), res.Extension)
	if err := u.store.Put(ctx, key, res.ContentType, in.Data); err != nil {
		return nil, apperror.Unavailable("Failed to store file", err)
	}

	doc := &domain.CandidateDocument{
		CandidateID:    c.ID,
		DocumentTypeID: in.DocumentTypeID,
		FileKey:        key,
		FileName:       upload.SafeFileName(in.FileName),
		ContentType:    res.ContentType,
		Size:           int64(len(in.Data)),
		Status:         domain.DocumentPending,
	}
	if err := u.docRepo.Create(ctx, doc); err != nil {
		if delErr := u.store.Delete(ctx, key); delErr != nil {
			logger.FromContext(ctx).Warn("failed to remove orphaned upload", "key", key, "error", delErr)
		}
		return nil, apperror.Internal(err)
	}

	if previous != nil && previous.Status != domain.DocumentApproved {
		u.discard(ctx, previous)
	}
	return doc, nil
}

// scan rejects infected files. A scanner failure rejects the upload too.
func (u *documentUsecase) scan(ctx context.Context, candidateID int64, in domain.UploadInput) error {
	if u.scanner == nil {
		return nil
	}
	res, err := u.scanner.Scan(ctx, in.FileName, in.Data)
	if err != nil {
		logger.FromContext(ctx).Error("antivirus scan failed", "scanner", u.scanner.Name(), "error", err)
		return apperror.Unavailable("File could not be scanned, try again later", err)
	}
	if res.Infected {
		recordAudit(ctx, u.auditor, audit.Event{
			Action:  audit.ActionUploadBlocked,
			Target:  fmt.Sprintf("candidate:%d", candidateID),
			Details: map[string]interface{}{"threat": res.Threat, "scanner": res.Scanner, "document_type_id": in.DocumentTypeID},
		})
		return apperror.BadRequest("File was rejected by the antivirus scan")
	}
	return nil
}

// discard removes a superseded upload. Failures leave an orphan and are only logged.
func (u *documentUsecase) discard(ctx context.Context, doc *domain.CandidateDocument) {
	log := logger.FromContext(ctx)
	if err := u.docRepo.Delete(ctx, doc.ID); err != nil {
		log.Warn("failed to delete replaced document", "document_id", doc.ID, "error", err)
		return
	}
	if err := u.store.Delete(ctx, doc.FileKey); err != nil {
		log.Warn("failed to delete replaced file", "key", doc.FileKey, "error", err)
	}
}

func (u *documentUsecase) List(ctx context.Context, candidateID int64) ([]domain.CandidateDocument, error) {
	if _, err := u.candidate(ctx, candidateID); err != nil {
		return nil, err
	}
	docs, err := u.docRepo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return docs, nil
}

func (u *documentUsecase) Review(ctx context.Context, id int64, in domain.ReviewInput) (*domain.CandidateDocument, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	doc, err := u.document(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentPending {
		return nil, apperror.Conflict("only pending documents can be reviewed")
	}
	notes := strings.TrimSpace(in.Notes)
	if in.Decision == "REJECT" && notes == "" {
		return nil, apperror.BadRequest("notes are required when rejecting a document")
	}

	doc.Status = domain.DocumentApproved
	if in.Decision == "REJECT" {
		doc.Status = domain.DocumentRejected
	}
	now := u.now()
	reviewer := v.UserID
	doc.Notes = notes
	doc.ReviewedBy = &reviewer
	doc.ReviewedAt = &now
	if err := u.docRepo.Review(ctx, doc); err != nil {
		return nil, notFound(err, "document not found")
	}

	recordAudit(ctx, u.auditor, audit.Event{
		Action:  audit.ActionDocumentReviewed,
		Target:  fmt.Sprintf("document:%d", doc.ID),
		Details: map[string]interface{}{"candidate_id": doc.CandidateID, "status": string(doc.Status)},
	})
	return doc, nil
}

// Checklist lists every requirement of the candidate's type with its latest upload.
func (u *documentUsecase) Checklist(ctx context.Context, candidateID int64) (*domain.Checklist, error) {
	c, err := u.candidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	reqs, err := u.catalogRepo.ListRequirements(ctx, c.CandidateTypeID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	docs, err := u.docRepo.ListByCandidate(ctx, c.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return buildChecklist(c.ID, reqs, docs), nil
}

// buildChecklist expects docs newest first. A requirement is satisfied by any approved upload.
func buildChecklist(candidateID int64, reqs []domain.DocumentRequirement, docs []domain.CandidateDocument) *domain.Checklist {
	latest := make(map[int64]*domain.CandidateDocument)
	approved := make(map[int64]bool)
	for i := range docs {
		d := &docs[i]
		if _, ok := latest[d.DocumentTypeID]; !ok {
			latest[d.DocumentTypeID] = d
		}
		if d.Status == domain.DocumentApproved {
			approved[d.DocumentTypeID] = true
		}
	}

	list := &domain.Checklist{CandidateID: candidateID, Items: make([]domain.ChecklistItem, 0, len(reqs)), Complete: true}
	for _, r := range reqs {
		list.Items = append(list.Items, domain.ChecklistItem{
			DocumentTypeID:   r.DocumentTypeID,
			DocumentTypeCode: r.DocumentTypeCode,
			DocumentTypeName: r.DocumentTypeName,
			Mandatory:        r.Mandatory,
			Document:         latest[r.DocumentTypeID],
		})
		if r.Mandatory && !approved[r.DocumentTypeID] {
			list.Complete = false
		}
	}
	return list
}

func (u *documentUsecase) DownloadURL(ctx context.Context, id int64) (string, error) {
	if u.store == nil {
		return "", apperror.Unavailable("File storage is not configured", storage.ErrNotConfigured)
	}
	doc, err := u.document(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := u.store.PresignGet(ctx, doc.FileKey, presignTTL)
	if err != nil {
		return "", apperror.Unavailable("Failed to create download link", err)
	}
	return url, nil
}
