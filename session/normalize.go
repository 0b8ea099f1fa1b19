package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/infocampus/campus/models"
)

// LoginFormat identifies one backend's login response shape
type LoginFormat string

const (
	// FormatAuto picks the adapter from the response envelope
	FormatAuto LoginFormat = "auto"
	// FormatFastAPI is {"access_token", "token_type", "user": {cedula, carrera_id, ...}}
	FormatFastAPI LoginFormat = "fastapi"
	// FormatDRF is {"access", "user": {username, carrera_detalle, en_mora, deuda_total, ...}}
	FormatDRF LoginFormat = "drf"
	// FormatLite is {"access", "user": {username, carrera, en_mora, ...}}
	FormatLite LoginFormat = "lite"
	// FormatFlat is {"token", "id", "username", "rol", ...}
	FormatFlat LoginFormat = "flat"
	// FormatAccessFlat is {"access", "id", "username", "rol", ...}
	FormatAccessFlat LoginFormat = "access_flat"
)

var (
	// ErrMissingToken is returned when a login response carries no credential
	ErrMissingToken = errors.New("login response has no access token")
	// ErrUnknownFormat is returned when no adapter matches the response
	ErrUnknownFormat = errors.New("unrecognized login response format")
)

// LoginNormalizer converts a backend login body into the canonical Principal
type LoginNormalizer func(body []byte) (*models.Principal, error)

var normalizers = map[LoginFormat]LoginNormalizer{
	FormatFastAPI:    normalizeFastAPI,
	FormatDRF:        normalizeDRF,
	FormatLite:       normalizeLite,
	FormatFlat:       normalizeFlat,
	FormatAccessFlat: normalizeAccessFlat,
}

// ParseLoginFormat accepts a configured format name; empty means auto
func ParseLoginFormat(s string) (LoginFormat, error) {
	f := LoginFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "" || f == FormatAuto {
		return FormatAuto, nil
	}
	if _, ok := normalizers[f]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
	}
	return f, nil
}

// NormalizeLogin decodes body with the adapter for format
func NormalizeLogin(format LoginFormat, body []byte) (*models.Principal, error) {
	if format == "" || format == FormatAuto {
		detected, err := DetectLoginFormat(body)
		if err != nil {
			return nil, err
		}
		format = detected
	}
	normalize, ok := normalizers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	p, err := normalize(body)
	if err != nil {
		return nil, fmt.Errorf("normalize %s login: %w", format, err)
	}
	if p.BearerToken == "" {
		return nil, ErrMissingToken
	}
	return p, nil
}

// DetectLoginFormat inspects only the envelope keys. This is the single place
// that looks at which fields are present.
func DetectLoginFormat(body []byte) (LoginFormat, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}

	_, hasUser := envelope["user"]
	switch {
	case has(envelope, "access_token") && hasUser:
		return FormatFastAPI, nil
	case has(envelope, "access") && hasUser:
		var user map[string]json.RawMessage
		if err := json.Unmarshal(envelope["user"], &user); err != nil {
			return "", fmt.Errorf("decode login user: %w", err)
		}
		if has(user, "carrera_detalle") || has(user, "deuda_total") {
			return FormatDRF, nil
		}
		return FormatLite, nil
	case has(envelope, "token") && !hasUser:
		return FormatFlat, nil
	case has(envelope, "access") && !hasUser:
		return FormatAccessFlat, nil
	}
	return "", ErrUnknownFormat
}

func has(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

type fastAPIResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID             int64       `json:"id"`
		Cedula         string      `json:"cedula"`
		Rol            models.Role `json:"rol"`
		FirstName      string      `json:"first_name"`
		LastName       string      `json:"last_name"`
		CarreraID      *int64      `json:"carrera_id"`
		EsBecado       bool        `json:"es_becado"`
		PorcentajeBeca float64     `json:"porcentaje_beca"`
	} `json:"user"`
}

func normalizeFastAPI(body []byte) (*models.Principal, error) {
	var r fastAPIResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	u := r.User
	return &models.Principal{
		ID:             u.ID,
		Username:       u.Cedula,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Rol,
		CareerRef:      u.CarreraID,
		IsScholarship:  u.EsBecado,
		ScholarshipPct: u.PorcentajeBeca,
		BearerToken:    r.AccessToken,
	}, nil
}

type drfResponse struct {
	Access string `json:"access"`
	User   struct {
		ID             int64       `json:"id"`
		Username       string      `json:"username"`
		NombreCompleto string      `json:"nombre_completo"`
		Rol            models.Role `json:"rol"`
		CarreraDetalle *struct {
			ID int64 `json:"id"`
		} `json:"carrera_detalle"`
		EsBecado       bool             `json:"es_becado"`
		PorcentajeBeca float64          `json:"porcentaje_beca"`
		EnMora         bool             `json:"en_mora"`
		DeudaTotal     *decimal.Decimal `json:"deuda_total"`
	} `json:"user"`
}

func normalizeDRF(body []byte) (*models.Principal, error) {
	var r drfResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	u := r.User
	first, last := splitFullName(u.NombreCompleto)
	p := &models.Principal{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      first,
		LastName:       last,
		Role:           u.Rol,
		InArrears:      u.EnMora,
		IsScholarship:  u.EsBecado,
		ScholarshipPct: u.PorcentajeBeca,
		BearerToken:    r.Access,
	}
	if u.CarreraDetalle != nil {
		id := u.CarreraDetalle.ID
		p.CareerRef = &id
	}
	if u.DeudaTotal != nil {
		p.DebtTotal = *u.DeudaTotal
	}
	return p, nil
}

type liteUser struct {
	ID             int64            `json:"id"`
	Username       string           `json:"username"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Rol            models.Role      `json:"rol"`
	Carrera        *int64           `json:"carrera"`
	EsBecado       bool             `json:"es_becado"`
	PorcentajeBeca float64          `json:"porcentaje_beca"`
	EnMora         bool             `json:"en_mora"`
	DeudaTotal     *decimal.Decimal `json:"deuda_total"`
}

func (u liteUser) principal(token string) *models.Principal {
	p := &models.Principal{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Rol,
		CareerRef:      u.Carrera,
		InArrears:      u.EnMora,
		IsScholarship:  u.EsBecado,
		ScholarshipPct: u.PorcentajeBeca,
		BearerToken:    token,
	}
	if u.DeudaTotal != nil {
		p.DebtTotal = *u.DeudaTotal
	}
	return p
}

func normalizeLite(body []byte) (*models.Principal, error) {
	var r struct {
		Access string   `json:"access"`
		User   liteUser `json:"user"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	return r.User.principal(r.Access), nil
}

func normalizeFlat(body []byte) (*models.Principal, error) {
	var r struct {
		Token string `json:"token"`
		liteUser
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	return r.liteUser.principal(r.Token), nil
}

func normalizeAccessFlat(body []byte) (*models.Principal, error) {
	var r struct {
		Access string `json:"access"`
		liteUser
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	return r.liteUser.principal(r.Access), nil
}

func splitFullName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// NormalizeProfile converts a bare profile body (the "user" object of a login
// response, as returned by the profile endpoint) into a Principal carrying token
func NormalizeProfile(body []byte, token string) (*models.Principal, error) {
	var user map[string]json.RawMessage
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	key := "access"
	if has(user, "cedula") && !has(user, "username") {
		key = "access_token"
	}
	envelope, err := json.Marshal(map[string]any{
		key:    token,
		"user": json.RawMessage(body),
	})
	if err != nil {
		return nil, fmt.Errorf("encode profile envelope: %w", err)
	}
	return NormalizeLogin(FormatAuto, envelope)
}
