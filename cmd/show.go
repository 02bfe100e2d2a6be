package cmd

import (
	"encoding/json"
	"fmt"
	"os"
)

// RunShow prints the registry document to stdout for inspection.
func RunShow() error {
	_, st, err := setup()
	if err != nil {
		return err
	}

	return st.WithLock(func() error {
		reg, err := st.Load()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(reg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	})
}
