// 命令行工具：对查询后端执行一次查询并打印编号列表，编号规则与地图视图一致
//
//	bizmap-query all
//	bizmap-query area <lat> <lon> [radius_m]
//	bizmap-query nearest <lat> <lon> [limit]
//	bizmap-query name <text...>
//	bizmap-query within <service area name...>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"bizmap/internal/business"
	"bizmap/internal/config"
	"bizmap/internal/engine"
	"bizmap/internal/listview"
	"bizmap/internal/logger"
	"bizmap/internal/numbering"
	"bizmap/internal/query"
	"bizmap/internal/viewport"
)

var errUsage = errors.New("usage: bizmap-query all | area <lat> <lon> [radius] | nearest <lat> <lon> [limit] | name <text> | within <area>")

func main() {
	cfg := config.Load()
	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	qc := query.NewClient(cfg.BackendBaseURL, &http.Client{Timeout: cfg.BackendTimeout})
	if err := run(context.Background(), os.Args[1:], os.Stdout, qc, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, q engine.Querier, cfg config.Config) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "all":
		all, err := q.All(ctx)
		if err != nil {
			return err
		}
		printMarkers(out, all, numbering.Assign(all, nil))
		return nil
	case "area", "nearest":
		if len(args) < 3 {
			return errUsage
		}
		lat, err1 := strconv.ParseFloat(args[1], 64)
		lon, err2 := strconv.ParseFloat(args[2], 64)
		if err1 != nil || err2 != nil {
			return errUsage
		}
		if args[0] == "nearest" {
			limit := cfg.NearestLimit
			if len(args) > 3 {
				if n, err := strconv.Atoi(args[3]); err == nil && n > 0 {
					limit = n
				}
			}
			near, err := q.ByNearest(ctx, lat, lon, limit)
			if err != nil {
				return err
			}
			printRows(out, near, &engine.Point{Lat: lat, Lon: lon})
			return nil
		}
		radius := cfg.DefaultRadius
		if len(args) > 3 {
			if r, err := strconv.ParseFloat(args[3], 64); err == nil && r > 0 {
				radius = r
			}
		}
		inRadius, err := q.ByProximity(ctx, lat, lon, radius)
		if err != nil {
			return err
		}
		near, err := q.ByNearest(ctx, lat, lon, cfg.NearestLimit)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d businesses within %.0f m (zoom %d)\n", len(inRadius), radius, viewport.ZoomForRadius(radius))
		printRows(out, near, &engine.Point{Lat: lat, Lon: lon})
		printMarkers(out, inRadius, numbering.Assign(inRadius, near))
		return nil
	case "name", "within":
		text := strings.TrimSpace(strings.Join(args[1:], " "))
		if text == "" {
			return engine.ErrEmptyInput
		}
		var res []business.Business
		var err error
		if args[0] == "name" {
			res, err = q.ByName(ctx, text)
		} else {
			res, err = q.ByContainment(ctx, text)
		}
		if err != nil {
			return err
		}
		if len(res) == 0 {
			fmt.Fprintln(out, listview.MsgEmpty)
			return nil
		}
		printRows(out, res, nil)
		return nil
	}
	return errUsage
}

func printRows(out io.Writer, ranked []business.Business, origin *engine.Point) {
	var opts []listview.Option
	if origin != nil {
		opts = append(opts, listview.WithOrigin(origin.Lat, origin.Lon))
	}
	p := listview.New(nil, nil)
	p.Render(ranked, opts...)
	if p.State() == listview.StateEmpty {
		fmt.Fprintln(out, p.Message())
		return
	}
	for _, r := range p.Rows() {
		line := fmt.Sprintf("%2d. %s [%s]", r.Rank, r.Name, r.Category)
		if r.DistanceM != nil {
			line += fmt.Sprintf(" %.0f m", *r.DistanceM)
		}
		if r.Summary != "" {
			line += " : " + r.Summary
		}
		fmt.Fprintln(out, line)
	}
}

func printMarkers(out io.Writer, full []business.Business, n numbering.Numbering) {
	for _, b := range full {
		badge := "  -"
		if rank, ok := n.Rank(b.ID); ok {
			badge = fmt.Sprintf("#%2d", rank)
		}
		fmt.Fprintf(out, "%s %s (%.6f, %.6f)\n", badge, b.Name, b.Lat(), b.Lon())
	}
}
