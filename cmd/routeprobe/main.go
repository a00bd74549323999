// Command routeprobe is an interactive console for trying route queries
// against a GeoJSON road file or the configured source.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"road-route-server/bootstrap"
	"road-route-server/config"
	"road-route-server/routing"
	"road-route-server/services"
	"road-route-server/utils"

	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "GeoJSON road file (overrides the configured source)")
	configPath := flag.String("config", os.Getenv("ROUTE_CONFIG"), "Path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *file != "" {
		cfg.Source.Kind = "file"
		cfg.Source.File = *file
	}
	// One graph for the whole session.
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = 0
	cfg.Cache.Watch = false

	components, err := bootstrap.Build(context.Background(), cfg, zap.NewNop(), nil)
	if err != nil {
		log.Fatalf("Failed to open geometry source: %v", err)
	}
	defer components.Close()

	fmt.Println("=== Road Route Probe ===")
	info, err := components.Snapshots.Refresh(context.Background())
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	fmt.Printf("Graph loaded: %d nodes, %d edges\n", info.Nodes, info.Edges)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("\nChoose an option:")
		fmt.Println("1. Route between two points")
		fmt.Println("2. Route through waypoints")
		fmt.Println("3. Find nearest road node")
		fmt.Println("4. Exit")
		fmt.Print("Enter your choice (1-4): ")

		if !scanner.Scan() {
			return
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			probeRoute(components.Service, scanner, false)
		case "2":
			probeRoute(components.Service, scanner, true)
		case "3":
			probeNearest(components, scanner)
		case "4":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}

func probeRoute(rs *services.RoutingService, scanner *bufio.Scanner, withWaypoints bool) {
	var waypoints []routing.Coordinate

	start := readCoordinate(scanner, "start")
	if start == nil {
		return
	}
	waypoints = append(waypoints, *start)

	if withWaypoints {
		fmt.Print("Enter waypoints as lat,lon;lat,lon (empty for none): ")
		scanner.Scan()
		via, err := utils.ParseCoordinates(scanner.Text())
		if err != nil {
			fmt.Printf("Invalid waypoints: %v\n", err)
			return
		}
		waypoints = append(waypoints, via...)
	}

	end := readCoordinate(scanner, "end")
	if end == nil {
		return
	}
	waypoints = append(waypoints, *end)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	started := time.Now()
	res, err := rs.ComputeRoute(ctx, waypoints)
	if err != nil {
		fmt.Printf("Error [%s]: %v\n", routing.KindOf(err), err)
		return
	}

	fmt.Println("\n--- Route Results ---")
	fmt.Printf("Total Distance: %.3f km\n", res.TotalDistanceKm)
	fmt.Printf("Points: %d, computed in %v\n", len(res.Path), time.Since(started))
	for _, leg := range res.Legs {
		mode := "snapped"
		if leg.Bridged {
			mode = "bridged"
		}
		fmt.Printf("  Leg %d %s -> %s: %.3f km (%s, snap %.3f/%.3f km)\n",
			leg.Index, leg.From, leg.To, leg.DistanceKm, mode, leg.StartSnapKm, leg.EndSnapKm)
	}
}

func probeNearest(c *bootstrap.Components, scanner *bufio.Scanner) {
	p := readCoordinate(scanner, "point")
	if p == nil {
		return
	}

	g, err := c.Store.Graph(context.Background())
	if err != nil {
		fmt.Printf("Error loading graph: %v\n", err)
		return
	}
	opts := c.Service.Options()

	if snap, ok := routing.Locate(g, *p, opts.SnapThresholdKm); ok {
		fmt.Printf("Snaps to node %d at %s, %.3f km away\n", snap.Node, snap.Coord, snap.DistanceKm)
		return
	}
	candidates := routing.Within(g, *p, opts.BridgeThresholdKm)
	fmt.Printf("No node within %.3f km; %d bridge candidates within %.3f km\n",
		opts.SnapThresholdKm, len(candidates), opts.BridgeThresholdKm)
	for i, s := range candidates {
		if i == 5 {
			fmt.Printf("  ... and %d more\n", len(candidates)-i)
			break
		}
		fmt.Printf("  node %d at %s, %.3f km\n", s.Node, s.Coord, s.DistanceKm)
	}
}

func readCoordinate(scanner *bufio.Scanner, label string) *routing.Coordinate {
	fmt.Printf("Enter %s as lat,lon: ", label)
	if !scanner.Scan() {
		return nil
	}
	c, err := utils.ParseCoordinate(scanner.Text())
	if err != nil {
		fmt.Printf("Invalid %s: %v\n", label, err)
		return nil
	}
	return &c
}
