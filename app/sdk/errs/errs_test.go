package errs_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	Success *bool             `json:"success"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields"`
}

func decode(t *testing.T, e *errs.Error) body {
	t.Helper()

	data, contentType, err := e.Encode()
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)

	var b body
	require.NoError(t, json.Unmarshal(data, &b))

	return b
}

func TestEncode(t *testing.T) {
	e := errs.New(errs.NotFound, errors.New("building not found"))

	b := decode(t, e)

	require.NotNil(t, b.Success)
	assert.False(t, *b.Success)
	assert.Equal(t, "building not found", b.Error)
	assert.Equal(t, "not_found", b.Code)
	assert.Nil(t, b.Fields)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   errs.ErrCode
		status int
	}{
		{errs.InvalidArgument, http.StatusBadRequest},
		{errs.Unauthenticated, http.StatusUnauthorized},
		{errs.PermissionDenied, http.StatusForbidden},
		{errs.NotFound, http.StatusNotFound},
		{errs.Aborted, http.StatusConflict},
		{errs.AlreadyUsed, http.StatusConflict},
		{errs.Expired, http.StatusGone},
		{errs.TooLarge, http.StatusRequestEntityTooLarge},
		{errs.Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, errs.New(tt.code, errors.New("x")).HTTPStatus())
		})
	}
}

type register struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Confirm  string `json:"passwordConfirm" validate:"omitempty,eqfield=Password"`
}

func TestCheck(t *testing.T) {
	err := errs.Check(register{Email: "nope", Password: "a", Confirm: "b"})
	require.Error(t, err)

	fe := errs.GetFieldErrors(err)
	require.NotNil(t, fe)

	fields := fe.Fields()
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "passwordConfirm")
	assert.NotContains(t, fields, "password")

	assert.NoError(t, errs.Check(register{Name: "Ann", Email: "ann@example.com", Password: "a"}))
}

func TestNew_KeepsFields(t *testing.T) {
	err := errs.Check(register{})
	require.Error(t, err)

	validate := errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	assert.Contains(t, validate.Fields, "name")

	wrapped := errs.New(errs.InvalidArgument, validate)
	assert.Equal(t, validate.Fields, wrapped.Fields)

	b := decode(t, wrapped)
	assert.Equal(t, "invalid_argument", b.Code)
	assert.Contains(t, b.Fields, "email")
}

func TestNewFieldErrors(t *testing.T) {
	e := errs.NewFieldErrors("apartmentId", errors.New("must be a uuid"))

	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus())
	assert.Equal(t, map[string]string{"apartmentId": "must be a uuid"}, e.Fields)
	assert.True(t, errs.IsError(e))
}
