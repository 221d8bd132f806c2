package main

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

func printJSON(result any) error {
	rendered, err := jsoniter.ConfigDefault.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("rendering result: %w", err)
	}

	fmt.Println(string(rendered))

	return nil
}
