// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"context"
	"net/url"
	"strings"

	"github.com/juanceresa/BigQuery/pkg/types"
)

// SearchInstitutions returns institutions matching name, best first.
func (c *Client) SearchInstitutions(ctx context.Context, name string) ([]types.InstitutionRef, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var resp listResponse[apiInstitution]
	if err := c.get(ctx, "/institutions", url.Values{"search": {name}}, false, &resp); err != nil {
		return nil, err
	}
	out := make([]types.InstitutionRef, 0, len(resp.Results))
	for _, inst := range resp.Results {
		out = append(out, types.InstitutionRef{
			ID:          inst.ID,
			DisplayName: inst.DisplayName,
			CountryCode: inst.CountryCode,
		})
	}
	return out, nil
}
