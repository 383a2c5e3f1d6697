// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package errors

// BundleError carries a stable error code alongside the underlying cause, so
// that callers can branch on the failure class without string matching.
type BundleError interface {
	error
	Code() ErrCode
	InnerError() error
}

type bundleError struct {
	code  ErrCode
	inner error
	msg   string
}

func (e bundleError) Error() string {
	if e.msg != "" {
		if e.inner != nil {
			return e.msg + ": " + e.inner.Error()
		}
		return e.msg
	}
	if e.inner != nil {
		return e.code.String() + ": " + e.inner.Error()
	}
	return e.code.String()
}

func (e bundleError) Code() ErrCode {
	return e.code
}

func (e bundleError) InnerError() error {
	return e.inner
}

func (e bundleError) Unwrap() error {
	return e.inner
}

func Simple(code ErrCode, inner error) BundleError {
	return bundleError{code: code, inner: inner}
}

func SimpleWithMessage(code ErrCode, inner error, msg string) BundleError {
	return bundleError{code: code, inner: inner, msg: msg}
}

// Code extracts the ErrCode from err, or -1 if err is not a BundleError.
func Code(err error) ErrCode {
	if be, ok := err.(BundleError); ok {
		return be.Code()
	}
	return ErrCode(-1)
}
