package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RifeWang/vecwal"
	"github.com/RifeWang/vecwal/model"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every record in the log, in lsn order",
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, endLsn, err := openLog()
		if err != nil {
			return err
		}
		if buf == nil {
			fmt.Println("no wal segments")
			return nil
		}
		defer buf.Close()

		record := &model.Record{}
		for {
			if err = buf.Next(endLsn, record); err != nil {
				return err
			}
			if record.Type == model.RecordNone {
				return nil
			}
			fileNo, offset := vecwal.ParseLsn(record.Lsn)
			fmt.Printf("%d:%d\t%s\ttable=%q\tpartition=%q\tids=%d\tdata=%dB\n",
				fileNo, offset, record.Type, record.TableID, record.PartitionTag,
				len(record.IDs), len(record.Data))
		}
	},
}
