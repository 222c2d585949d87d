package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"loot/internal/bag/models"
	"loot/pkg/domain"
	"loot/pkg/validation"
)

// bagPath carries the path parameters of /v1/bags/{id}[/traits/{category}].
type bagPath struct {
	ID       string `param:"id" validate:"required,numeric,max=20"`
	Category string `param:"category" validate:"omitempty,alpha,max=16"`
}

func parseBagPath(r *http.Request) (domain.TokenID, error) {
	id, _, err := bagPath{ID: chi.URLParam(r, "id")}.parse()
	return id, err
}

func (p bagPath) parse() (domain.TokenID, models.Category, error) {
	if err := validation.Validate(p); err != nil {
		return 0, "", err
	}
	id, err := domain.ParseTokenID(p.ID)
	if err != nil {
		return 0, "", err
	}
	if p.Category == "" {
		return id, "", nil
	}
	category, err := models.ParseCategory(p.Category)
	if err != nil {
		return 0, "", err
	}
	return id, category, nil
}

// credentialPath carries the path parameters of /v1/credentials/{credential}/traits[/{category}].
type credentialPath struct {
	Credential string `param:"credential" validate:"required,numeric,max=78"`
	Category   string `param:"category" validate:"omitempty,alpha,max=16"`
}

func (p credentialPath) parse() (domain.Credential, models.Category, error) {
	if err := validation.Validate(p); err != nil {
		return domain.Credential{}, "", err
	}
	cred, err := domain.ParseCredential(p.Credential)
	if err != nil {
		return domain.Credential{}, "", err
	}
	if p.Category == "" {
		return cred, "", nil
	}
	category, err := models.ParseCategory(p.Category)
	if err != nil {
		return domain.Credential{}, "", err
	}
	return cred, category, nil
}
