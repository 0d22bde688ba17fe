// Package identity talks to the external identity-assertion service.
// The core consumes exactly one capability: does this bearer token
// belong to the person or organization behind a member identity.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hyperledger/fabric/common/flogging"

	"iptrade/model"
)

var logger = flogging.MustGetLogger("iptrade.identity")

// Validator asserts that a bearer token speaks for a member. Any
// transport or protocol failure is a transaction-level error, never a
// crash.
type Validator interface {
	Validate(ctx context.Context, member model.MemberIdentity, bearerToken, externalID string) (bool, error)
}

// requestTimeout bounds the assertion round trip. The call happens
// inside block validation and may run more than once for the same block,
// so it must stay short and side-effect free.
const requestTimeout = time.Second

// Client validates members against the government identity service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type personInfo struct {
	Snils string `json:"snils"`
}

type roleInfo struct {
	Ogrn string `json:"ogrn"`
}

type rolesResponse struct {
	Elements []roleInfo `json:"elements"`
}

// Validate resolves organizations and sole proprietors through the
// account's role list and individuals through the account profile.
func (c *Client) Validate(ctx context.Context, member model.MemberIdentity, bearerToken, externalID string) (bool, error) {
	if member.IsPerson() {
		return c.validatePerson(ctx, member, bearerToken, externalID)
	}
	return c.validateRole(ctx, member, bearerToken, externalID)
}

func (c *Client) validateRole(ctx context.Context, member model.MemberIdentity, token, externalID string) (bool, error) {
	var roles rolesResponse
	url := fmt.Sprintf("%s/rs/prns/%s/roles", c.baseURL, externalID)
	if err := c.getJSON(ctx, url, token, &roles); err != nil {
		return false, err
	}
	for _, role := range roles.Elements {
		if role.Ogrn == member.Number {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) validatePerson(ctx context.Context, member model.MemberIdentity, token, externalID string) (bool, error) {
	var person personInfo
	url := fmt.Sprintf("%s/rs/prns/%s", c.baseURL, externalID)
	if err := c.getJSON(ctx, url, token, &person); err != nil {
		return false, err
	}
	snils := strings.NewReplacer("-", "", " ", "").Replace(person.Snils)
	return snils == member.Number, nil
}

func (c *Client) getJSON(ctx context.Context, url, token string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.ErrIdentityValidation(err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warnw("identity service unreachable", "err", err)
		return model.ErrIdentityValidation("identity service unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warnw("identity service rejected the request", "status", resp.StatusCode)
		return model.ErrIdentityValidation(fmt.Sprintf("identity service returned %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.ErrIdentityValidation("malformed identity service response")
	}
	return nil
}
