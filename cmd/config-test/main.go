package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/chrissnell/wxcore/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlConfig, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	mismatches := compareDevices(yamlConfig.Devices, sqliteConfig.Devices)

	if reflect.DeepEqual(yamlConfig.History, sqliteConfig.History) {
		fmt.Println("✓ History configuration matches")
	} else {
		fmt.Printf("✗ History configuration differs\n    YAML:   %+v\n    SQLite: %+v\n", yamlConfig.History, sqliteConfig.History)
		mismatches++
	}

	if yamlConfig.Admin == sqliteConfig.Admin {
		fmt.Println("✓ Admin configuration matches")
	} else {
		fmt.Printf("✗ Admin configuration differs\n    YAML:   %+v\n    SQLite: %+v\n", yamlConfig.Admin, sqliteConfig.Admin)
		mismatches++
	}

	if mismatches > 0 {
		fmt.Printf("\n%d differences found\n", mismatches)
		os.Exit(1)
	}
	fmt.Println("\nTest completed!")
}

// compareDevices matches devices by name, since SQLite returns them sorted
func compareDevices(yamlDevices, sqliteDevices []config.DeviceData) int {
	fmt.Printf("Devices - YAML: %d, SQLite: %d\n", len(yamlDevices), len(sqliteDevices))

	byName := make(map[string]config.DeviceData, len(sqliteDevices))
	for _, d := range sqliteDevices {
		byName[d.Name] = d
	}

	mismatches := 0
	for _, yd := range yamlDevices {
		sd, ok := byName[yd.Name]
		switch {
		case !ok:
			fmt.Printf("✗ Device %s missing from SQLite\n", yd.Name)
			mismatches++
		case !reflect.DeepEqual(yd, sd):
			fmt.Printf("✗ Device %s differs\n    YAML:   %+v\n    SQLite: %+v\n", yd.Name, yd, sd)
			mismatches++
		default:
			fmt.Printf("✓ Device %s matches\n", yd.Name)
		}
		delete(byName, yd.Name)
	}
	for name := range byName {
		fmt.Printf("✗ Device %s only in SQLite\n", name)
		mismatches++
	}

	return mismatches
}
