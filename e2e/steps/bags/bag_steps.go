package bags

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cucumber/godog"

	"loot/internal/bag/models"
	"loot/internal/bag/render"
	"loot/internal/caller"
	"loot/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string) error
	GET(path string) error
	GetResponseField(field string) (any, error)
	GetLastResponseBody() []byte
	Persona(name string) (domain.Address, error)
	ActAs(p *caller.Principal)
	Save(key, value string)
	Saved(key string) (string, error)
}

// RegisterSteps registers bag issuance and query steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &bagSteps{tc: tc}

	// Caller steps
	ctx.Step(`^I am "([^"]*)"$`, steps.iAm)
	ctx.Step(`^I am "([^"]*)" relayed by "([^"]*)"$`, steps.iAmRelayedBy)
	ctx.Step(`^I am not signed in$`, steps.notSignedIn)

	// Issuance steps
	ctx.Step(`^I claim bag (\d+)$`, steps.claim)
	ctx.Step(`^I claim reserved bag (\d+)$`, steps.ownerClaim)
	ctx.Step(`^I pause claims$`, steps.pause)
	ctx.Step(`^I resume claims$`, steps.resume)
	ctx.Step(`^I save the credential$`, steps.saveCredential)

	// Query assertions
	ctx.Step(`^bag (\d+) should be owned by "([^"]*)"$`, steps.bagOwnedBy)
	ctx.Step(`^bag (\d+) should not exist$`, steps.bagShouldNotExist)
	ctx.Step(`^the traits of bag (\d+) should match the saved credential$`, steps.traitsMatchSavedCredential)
	ctx.Step(`^the token URI of bag (\d+) should be named "([^"]*)" and list its traits$`, steps.tokenURIRenders)
}

type bagSteps struct {
	tc TestContext
}

func (s *bagSteps) iAm(ctx context.Context, name string) error {
	addr, err := s.tc.Persona(name)
	if err != nil {
		return err
	}
	s.tc.ActAs(&caller.Principal{Address: addr})
	return nil
}

func (s *bagSteps) iAmRelayedBy(ctx context.Context, name, actor string) error {
	addr, err := s.tc.Persona(name)
	if err != nil {
		return err
	}
	s.tc.ActAs(&caller.Principal{Address: addr, Actor: actor})
	return nil
}

func (s *bagSteps) notSignedIn(ctx context.Context) error {
	s.tc.ActAs(nil)
	return nil
}

func (s *bagSteps) claim(ctx context.Context, id int) error {
	return s.tc.POST(fmt.Sprintf("/v1/bags/%d/claim", id))
}

func (s *bagSteps) ownerClaim(ctx context.Context, id int) error {
	return s.tc.POST(fmt.Sprintf("/v1/admin/bags/%d/claim", id))
}

func (s *bagSteps) pause(ctx context.Context) error {
	return s.tc.POST("/v1/admin/pause")
}

func (s *bagSteps) resume(ctx context.Context) error {
	return s.tc.POST("/v1/admin/resume")
}

func (s *bagSteps) saveCredential(ctx context.Context) error {
	v, err := s.tc.GetResponseField("credential")
	if err != nil {
		return err
	}
	cred, ok := v.(string)
	if !ok {
		return fmt.Errorf("credential is %T, want a decimal string", v)
	}
	s.tc.Save("credential", cred)
	return nil
}

func (s *bagSteps) bagOwnedBy(ctx context.Context, id int, name string) error {
	want, err := s.tc.Persona(name)
	if err != nil {
		return err
	}
	if err := s.tc.GET(fmt.Sprintf("/v1/bags/%d", id)); err != nil {
		return err
	}
	owner, err := s.tc.GetResponseField("owner")
	if err != nil {
		return err
	}
	if owner != want.String() {
		return fmt.Errorf("bag %d owned by %v, want %s (%s)", id, owner, name, want)
	}
	return nil
}

func (s *bagSteps) bagShouldNotExist(ctx context.Context, id int) error {
	if err := s.tc.GET(fmt.Sprintf("/v1/bags/%d", id)); err != nil {
		return err
	}
	code, err := s.tc.GetResponseField("error")
	if err != nil {
		return fmt.Errorf("bag %d exists: %s", id, s.tc.GetLastResponseBody())
	}
	if code != "not_found" {
		return fmt.Errorf("expected not_found for bag %d, got %v", id, code)
	}
	return nil
}

type traitList struct {
	Traits models.Traits `json:"traits"`
}

func (s *bagSteps) fetchTraits(path string) (traitList, error) {
	var out traitList
	if err := s.tc.GET(path); err != nil {
		return out, err
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(out.Traits) == 0 {
		return out, fmt.Errorf("no traits at %s: %s", path, s.tc.GetLastResponseBody())
	}
	return out, nil
}

func (s *bagSteps) traitsMatchSavedCredential(ctx context.Context, id int) error {
	cred, err := s.tc.Saved("credential")
	if err != nil {
		return err
	}
	byBag, err := s.fetchTraits(fmt.Sprintf("/v1/bags/%d/traits", id))
	if err != nil {
		return err
	}
	byCredential, err := s.fetchTraits("/v1/credentials/" + cred + "/traits")
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(byBag.Traits, byCredential.Traits) {
		return fmt.Errorf("bag %d traits %v differ from credential traits %v", id, byBag, byCredential)
	}
	return nil
}

func (s *bagSteps) tokenURIRenders(ctx context.Context, id int, name string) error {
	traits, err := s.fetchTraits(fmt.Sprintf("/v1/bags/%d/traits", id))
	if err != nil {
		return err
	}
	if err := s.tc.GET(fmt.Sprintf("/v1/bags/%d/token-uri", id)); err != nil {
		return err
	}
	v, err := s.tc.GetResponseField("token_uri")
	if err != nil {
		return err
	}
	uri, _ := v.(string)
	meta, svg, err := render.Decode(uri)
	if err != nil {
		return err
	}
	if meta.Name != name {
		return fmt.Errorf("token URI name %q, want %q", meta.Name, name)
	}
	if want := render.Document(traits.Traits); svg != want {
		return fmt.Errorf("token URI image does not match the bag's traits")
	}
	return nil
}
