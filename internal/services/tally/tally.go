// Package tally assembles SEPA direct-debit batches: it computes every
// member's total due, renders the pain.008.001.02 message, writes it to
// the output directory and archives the collected one-time fees
// together with the tally record in a single transaction.
//
// Creating a tally is deliberately not idempotent. One-time fees are
// archived on collection, so running the assembly twice produces two
// batches and the second one no longer contains them.
package tally

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clubkasse/membership-tally/internal/lib/sepa"
	"github.com/clubkasse/membership-tally/internal/lib/sl"
	"github.com/clubkasse/membership-tally/internal/metrics"
	"github.com/clubkasse/membership-tally/internal/models"
)

// Repository is the storage surface of the tally assembly.
type Repository interface {
	// Setting returns the value of one settings key, or a
	// models.ErrSettingNotFound wrapping error.
	Setting(ctx context.Context, name string) (string, error)
	// AllMembers returns every member, active or not, ordered by
	// ascending id. Exited members can still owe one-time fees.
	AllMembers(ctx context.Context) ([]models.Member, error)
	// CommitTally inserts the tally row and archives the outstanding
	// one-time fees of the debited members in a single transaction. It
	// returns the id of the new tally.
	CommitTally(ctx context.Context, tally *models.Tally, debitedMemberIDs []int64) (int64, error)
	// ListTallies returns the stored tallies without their contents,
	// ordered by collection date.
	ListTallies(ctx context.Context) ([]models.Tally, error)
	// Tally loads one tally including its compressed contents.
	Tally(ctx context.Context, id int64) (*models.Tally, error)
}

// FeeCalculator yields a member's total due. Satisfied by the fees
// service.
type FeeCalculator interface {
	TotalFee(ctx context.Context, memberID int64, at time.Time) (decimal.Decimal, error)
}

// Publisher announces finished tallies, e.g. to a notification worker.
// It may be nil; assembly does not depend on the broker being up.
type Publisher interface {
	PublishTallyCreated(event CreatedEvent) error
}

// CreatedEvent is the message published after a tally was committed.
type CreatedEvent struct {
	EventID        string `json:"event_id"`
	TallyID        int64  `json:"tally_id"`
	MessageID      string `json:"message_id"`
	TotalAmount    string `json:"total_amount"`
	Transactions   int    `json:"transactions"`
	CollectionDate string `json:"collection_date"`
	FileName       string `json:"file_name"`
}

type Service struct {
	repo      Repository
	fees      FeeCalculator
	publisher Publisher
	log       *slog.Logger

	outputDir string
	now       func() time.Time
}

func NewService(repo Repository, fees FeeCalculator, publisher Publisher, log *slog.Logger, outputDir string) *Service {
	return &Service{
		repo:      repo,
		fees:      fees,
		publisher: publisher,
		log:       log,
		outputDir: outputDir,
		now:       time.Now,
	}
}

// Create assembles a new direct-debit batch for the given collection
// date, writes the serialized message into the output directory and
// returns the committed tally.
func (s *Service) Create(ctx context.Context, collectionDate time.Time) (*models.Tally, error) {
	const op = "tally.Create"

	// Fail before any fee is computed or archived if the result could
	// not be written anyway.
	info, err := os.Stat(s.outputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %q: %w", op, s.outputDir, models.ErrOutputDirMissing)
	}

	creditor, e2eTemplate, purpose, err := s.loadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	members, err := s.repo.AllMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	createdAt := s.now().UTC()
	assets := make([]models.Asset, 0, len(members))
	debited := make([]int64, 0, len(members))
	for i := range members {
		member := members[i]
		// Without a signed mandate the member cannot be debited at all;
		// their dues stay outstanding until a mandate arrives.
		if !member.HasMandate() {
			continue
		}
		fee, err := s.fees.TotalFee(ctx, member.ID, collectionDate)
		if err != nil {
			return nil, fmt.Errorf("%s: member %d: %w", op, member.ID, err)
		}
		if fee.IsZero() {
			continue
		}
		if !member.MandateComplete() {
			return nil, fmt.Errorf("%s: member %d: %w", op, member.ID, models.ErrIncompleteMandate)
		}
		assets = append(assets, models.Asset{
			Debitor: member,
			Purpose: purpose,
			Amount:  fee,
			E2EID:   e2eTemplate,
		})
		debited = append(debited, member.ID)
	}

	msgID := sepa.MessageID(createdAt)
	doc, total, err := sepa.Build(msgID, createdAt, creditor, collectionDate, assets)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	serialized, err := sepa.Serialize(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fileName := msgID + ".xml"
	filePath := filepath.Join(s.outputDir, fileName)
	if err := os.WriteFile(filePath, []byte(serialized), 0o644); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &models.Tally{
		CreationTime:   createdAt,
		CollectionDate: collectionDate,
		TotalAmount:    total,
	}
	if err := result.SetContents(serialized); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.ID, err = s.repo.CommitTally(ctx, result, debited)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.TalliesCreated.Inc()
	metrics.TransactionsDebited.Add(float64(len(assets)))

	s.log.Info("tally created",
		slog.Int64("tally_id", result.ID),
		slog.String("message_id", msgID),
		slog.Int("transactions", len(assets)),
		sl.Amount("total", total))

	if s.publisher != nil {
		event := CreatedEvent{
			EventID:        uuid.NewString(),
			TallyID:        result.ID,
			MessageID:      msgID,
			TotalAmount:    total.StringFixed(2),
			Transactions:   len(assets),
			CollectionDate: collectionDate.Format("2006-01-02"),
			FileName:       fileName,
		}
		if err := s.publisher.PublishTallyCreated(event); err != nil {
			// The batch is committed; the event is best effort.
			s.log.Error("failed to publish tally event",
				slog.Int64("tally_id", result.ID), sl.Err(err))
		}
	}

	return result, nil
}

// List returns the stored tallies without contents, ordered by
// collection date.
func (s *Service) List(ctx context.Context) ([]models.Tally, error) {
	const op = "tally.List"

	tallies, err := s.repo.ListTallies(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tallies, nil
}

// Read loads one tally and decompresses its serialized message.
func (s *Service) Read(ctx context.Context, id int64) (*models.Tally, string, error) {
	const op = "tally.Read"

	t, err := s.repo.Tally(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	contents, err := t.Contents()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return t, contents, nil
}

func (s *Service) loadSettings(ctx context.Context) (models.CreditorInfo, string, string, error) {
	var creditor models.CreditorInfo
	values := map[string]*string{
		models.TallyCreditorNameKey: &creditor.Name,
		models.TallyCreditorIBANKey: &creditor.IBAN,
		models.TallyCreditorBICKey:  &creditor.BIC,
		models.TallyCreditorIDKey:   &creditor.Identification,
	}
	for key, dst := range values {
		value, err := s.repo.Setting(ctx, key)
		if err != nil {
			return models.CreditorInfo{}, "", "", fmt.Errorf("setting %q: %w", key, err)
		}
		*dst = value
	}
	e2eTemplate, err := s.repo.Setting(ctx, models.TallyE2ETemplateKey)
	if err != nil {
		return models.CreditorInfo{}, "", "", fmt.Errorf("setting %q: %w", models.TallyE2ETemplateKey, err)
	}
	purpose, err := s.repo.Setting(ctx, models.TallyPurposeKey)
	if err != nil {
		return models.CreditorInfo{}, "", "", fmt.Errorf("setting %q: %w", models.TallyPurposeKey, err)
	}
	return creditor, e2eTemplate, purpose, nil
}
