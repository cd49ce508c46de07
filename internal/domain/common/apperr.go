// internal/domain/common/apperr.go
package common

import (
	"errors"
	"fmt"
)

// エラー分類（taxonomy）:
// - ValidationError: 呼び出し側入力が前提条件を満たさない（ローカルで回復可能）
// - AuthError:       identity サービスに拒否された / 未認証でゲート操作を呼んだ
// - TransportError:  ストアへの購読・単発呼び出しが失敗（ネットワーク/権限）
//
// NotFound はエラーではなく (nil, nil) で表現する（repository port の方針）。

// ValidationError is a precondition failure on caller input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AuthError is a rejection by the identity service, or a gated operation
// invoked without an authenticated principal.
type AuthError struct {
	Msg string
	// Err is the underlying identity-service error, if any.
	Err error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return "auth: " + e.Msg + ": " + e.Err.Error()
	}
	return "auth: " + e.Msg
}

func (e *AuthError) Unwrap() error { return e.Err }

func NewAuthError(msg string, err error) error {
	return &AuthError{Msg: msg, Err: err}
}

func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// TransportError is a failed call to the backing store.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

func NewTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
