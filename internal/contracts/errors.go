package contracts

import (
	"errors"
	"fmt"
)

// 에러 분류 (호출자는 errors.Is 로 판별)
var (
	// ErrValidation 잘못된 입력 (빈 제품 목록, 역전된 날짜 구간 등)
	ErrValidation = errors.New("validation failed")
	// ErrEnrichmentUnavailable 보강 데이터 소스 실패 (리졸버 내부에서 기본값으로 복구)
	ErrEnrichmentUnavailable = errors.New("enrichment unavailable")
	// ErrModelUnavailable 요청 모드의 학습 모델 없음
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrSchemaMismatch 피처 컬럼 불일치 (요청 실패)
	ErrSchemaMismatch = errors.New("feature schema mismatch")
	// ErrNoProducts 예측할 제품 유니버스가 비어 있음
	ErrNoProducts = errors.New("no products available")
	// ErrTrainingInProgress 같은 모드 학습이 이미 실행 중
	ErrTrainingInProgress = errors.New("training already in progress")
	// ErrInsufficientData 학습 데이터 부족
	ErrInsufficientData = errors.New("insufficient training data")
	// ErrRateLimited 요청 한도 초과
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
