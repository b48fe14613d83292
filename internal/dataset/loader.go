package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// LoadResult is the memoized outcome of the one dataset load of the process.
// On failure Dataset is empty and Err is an *apperrors.AppError whose Message
// is the user-facing diagnostic.
type LoadResult struct {
	Dataset    *domain.Dataset
	Stats      NormalizeStats
	Err        error
	ErrType    apperrors.ErrorType
	Diagnostic string
	LoadedAt   time.Time
	Duration   time.Duration
}

// OK reports whether the load produced a usable dataset.
func (r *LoadResult) OK() bool {
	return r != nil && r.Err == nil && !r.Dataset.Empty()
}

// Loader fetches, reads and normalizes the dataset exactly once.
type Loader struct {
	source     Source
	reader     Reader
	identifier string
	logger     *slog.Logger
	metrics    *infrastructure.BusinessMetrics

	once   sync.Once
	done   atomic.Bool
	result *LoadResult
}

// NewLoader creates a loader. metrics may be nil.
func NewLoader(source Source, reader Reader, identifier string, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		source:     source,
		reader:     reader,
		identifier: identifier,
		logger:     logger.With(slog.String("component", "dataset_loader")),
		metrics:    metrics,
	}
}

// Load returns the dataset, running the pipeline on first call only. Concurrent
// first callers block until the single run finishes. Failures are memoized too.
func (l *Loader) Load(ctx context.Context) *LoadResult {
	l.once.Do(func() {
		l.result = l.load(context.WithoutCancel(ctx))
		l.done.Store(true)
	})
	return l.result
}

// Loaded reports whether the load has completed, successfully or not.
func (l *Loader) Loaded() bool {
	return l.done.Load()
}

func (l *Loader) load(ctx context.Context) *LoadResult {
	ctx, span := otel.Tracer(infrastructure.MeterName).Start(ctx, "dataset.load")
	defer span.End()
	span.SetAttributes(attribute.String("dataset.identifier", l.identifier))

	start := time.Now()
	l.logger.InfoContext(ctx, "loading dataset",
		slog.String("identifier", l.identifier),
		slog.String("file", l.reader.FileName),
	)

	ds, stats, err := l.run(ctx)
	result := &LoadResult{
		Dataset:  ds,
		Stats:    stats,
		LoadedAt: time.Now(),
		Duration: time.Since(start),
	}

	if err == nil && ds.Empty() {
		err = apperrors.NewUnexpectedError("dataset has no valid rows after normalization", nil)
	}

	if err != nil {
		errType := Classify(err)
		diagnostic := Diagnose(errType, err, l.identifier, l.reader.FileName)
		result.Dataset = domain.EmptyDataset()
		result.ErrType = errType
		result.Diagnostic = diagnostic
		result.Err = apperrors.NewAppError(errType, diagnostic, err)

		span.RecordError(err)
		span.SetStatus(codes.Error, string(errType))
		l.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("error_type", string(errType)),
			slog.String("error", err.Error()),
			slog.Duration("duration", result.Duration),
		)
		infrastructure.RecordDatasetLoad(ctx, l.metrics, string(errType), result.Duration, 0, stats.Dropped)
		return result
	}

	span.SetAttributes(
		attribute.Int("dataset.rows", stats.KeptRows),
		attribute.Int("dataset.dropped_rows", stats.DroppedRows()),
	)
	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("input_rows", stats.InputRows),
		slog.Int("rows", stats.KeptRows),
		slog.Duration("duration", result.Duration),
	)
	l.logger.DebugContext(ctx, "rows dropped during normalization", slog.Any("dropped", stats.Dropped))
	infrastructure.RecordDatasetLoad(ctx, l.metrics, "success", result.Duration, stats.KeptRows, stats.Dropped)
	return result
}

func (l *Loader) run(ctx context.Context) (ds *domain.Dataset, stats NormalizeStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewUnexpectedError(fmt.Sprintf("panic while loading dataset: %v", r), nil)
		}
	}()

	dir, err := l.source.Fetch(ctx, l.identifier)
	if err != nil {
		return nil, stats, err
	}

	raw, err := l.reader.Read(dir)
	if err != nil {
		return nil, stats, err
	}

	return Normalize(raw)
}

// Classify maps a pipeline error onto the loader taxonomy. Anything that is
// not a source, schema, authentication or network failure is unexpected.
func Classify(err error) apperrors.ErrorType {
	switch t := apperrors.TypeOf(err); t {
	case apperrors.ErrTypeSourceUnavailable, apperrors.ErrTypeSchemaMismatch,
		apperrors.ErrTypeAuthentication, apperrors.ErrTypeNetwork:
		return t
	}
	return apperrors.ErrTypeUnexpected
}

// Diagnose builds the user-facing message for a failed load.
func Diagnose(errType apperrors.ErrorType, err error, identifier, fileName string) string {
	detail := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		detail = appErr.Message
	}

	switch errType {
	case apperrors.ErrTypeSourceUnavailable:
		return fmt.Sprintf("Erro: O arquivo '%s' não foi encontrado dentro do dataset baixado do Kaggle. Verifique o nome do arquivo.", fileName)
	case apperrors.ErrTypeSchemaMismatch:
		return fmt.Sprintf("Erro de coluna após o download ou renomeação: %s. Isso pode indicar que o arquivo CSV baixado do Kaggle tem nomes de colunas diferentes do esperado ou está malformado. Colunas fornecidas pelo usuário para referência: Rank, Name, Platform, Year, Genre, Publisher, NA_Sales, EU_Sales, JP_Sales, Other_Sales, Global_Sales.", detail)
	case apperrors.ErrTypeAuthentication:
		return "Erro de autenticação do Kaggle. Por favor, certifique-se de que seu arquivo 'kaggle.json' está configurado corretamente em '~/.kaggle/' (Linux/macOS) ou 'C:\\Users\\<seu_usuario>\\.kaggle\\' (Windows)."
	case apperrors.ErrTypeNetwork:
		return fmt.Sprintf("Erro ao baixar o dataset do Kaggle. Verifique o nome do dataset ('%s') e sua conexão com a internet. Detalhes: %s", identifier, detail)
	default:
		return fmt.Sprintf("Ocorreu um erro inesperado ao carregar ou processar os dados: %s. Isso pode ser um problema com o formato dos dados ou a conexão.", detail)
	}
}
