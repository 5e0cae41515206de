package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RifeWang/vecwal"
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Print the persisted lsn checkpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		mh := vecwal.NewMetaHandler(viper.GetString("path"))
		applied, write, ok, err := mh.Load()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no usable wal meta")
			return nil
		}

		af, ao := vecwal.ParseLsn(applied)
		wf, wo := vecwal.ParseLsn(write)
		fmt.Printf("applied\t%d (%d:%d)\n", applied, af, ao)
		fmt.Printf("write\t%d (%d:%d)\n", write, wf, wo)
		return nil
	},
}
