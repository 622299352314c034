package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/xli340/carbn/internal/geo"
	"github.com/xli340/carbn/internal/types"
)

type vehicleResponse struct {
	Success bool             `json:"success"`
	Data    types.VehicleSet `json:"data"`
}

type trackResponse struct {
	Success bool               `json:"success"`
	Data    types.VehicleTrack `json:"data"`
}

// FetchVehiclesWithinBounds returns the live vehicles inside the given
// viewport. Viewports exceeding the platform's area limit are partitioned
// into leaf boxes and queried concurrently; the settled results are merged in
// leaf order, deduplicated by vehicle id. A vehicle sitting near a shared
// edge can appear in adjacent leaves, in which case the later leaf's value
// wins. Any leaf failure fails the whole fetch.
func (c *Client) FetchVehiclesWithinBounds(ctx context.Context, bounds types.Bounds) (*types.VehicleSet, error) {
	leaves := geo.SplitBounds(bounds)

	results := make([]types.VehicleSet, len(leaves))
	errs := make([]error, len(leaves))

	var wg sync.WaitGroup
	for i, leaf := range leaves {
		wg.Add(1)
		go func(i int, leaf types.Bounds) {
			defer wg.Done()
			set, err := c.fetchVehiclesOnce(ctx, leaf)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = *set
		}(i, leaf)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("partitioned vehicle query failed: %w", err)
		}
	}

	merged := make(map[string]types.Vehicle)
	var order []string
	for _, result := range results {
		for _, v := range result.Vehicles {
			if _, seen := merged[v.VehicleID]; !seen {
				order = append(order, v.VehicleID)
			}
			merged[v.VehicleID] = v
		}
	}

	vehicles := make([]types.Vehicle, 0, len(order))
	for _, id := range order {
		vehicles = append(vehicles, merged[id])
	}

	return &types.VehicleSet{Vehicles: vehicles, Count: len(vehicles)}, nil
}

func (c *Client) fetchVehiclesOnce(ctx context.Context, bounds types.Bounds) (*types.VehicleSet, error) {
	params := url.Values{}
	params.Set("swLat", strconv.FormatFloat(bounds.SW.Lat, 'f', -1, 64))
	params.Set("swLng", strconv.FormatFloat(bounds.SW.Lng, 'f', -1, 64))
	params.Set("neLat", strconv.FormatFloat(bounds.NE.Lat, 'f', -1, 64))
	params.Set("neLng", strconv.FormatFloat(bounds.NE.Lng, 'f', -1, 64))

	var resp vehicleResponse
	if err := c.getJSON(ctx, "/api/v1/fleet/vehicles/live?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// FetchVehicleTrack returns the historical track of a vehicle between from
// and to. A zero to is omitted and the server defaults it to now.
func (c *Client) FetchVehicleTrack(ctx context.Context, vehicleID string, from, to time.Time) (*types.VehicleTrack, error) {
	params := url.Values{}
	params.Set("from", from.Format(time.RFC3339))
	if !to.IsZero() {
		params.Set("to", to.Format(time.RFC3339))
	}

	path := fmt.Sprintf("/api/v1/fleet/vehicles/%s/track?%s", url.PathEscape(vehicleID), params.Encode())

	var resp trackResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
