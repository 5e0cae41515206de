package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RifeWang/vecwal"
	"github.com/RifeWang/vecwal/model"
	"github.com/RifeWang/vecwal/segdir"
)

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Summarize the segments in the log directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		segments, err := vecwal.ListSegments(viper.GetString("path"))
		if err != nil {
			return err
		}
		if segments.Len() == 0 {
			fmt.Println("no wal segments")
			return nil
		}

		counts, err := countRecords()
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"File", "Bytes", "Records"})
		segments.Ascend(func(seg *segdir.Segment) bool {
			table.Append([]string{
				vecwal.ToFileName(seg.FileNo),
				strconv.FormatInt(seg.Size, 10),
				strconv.Itoa(counts[seg.FileNo]),
			})
			return true
		})
		table.Render()
		return nil
	},
}

func countRecords() (map[uint32]int, error) {
	buf, endLsn, err := openLog()
	if err != nil || buf == nil {
		return nil, err
	}
	defer buf.Close()

	counts := make(map[uint32]int)
	record := &model.Record{}
	for {
		if err = buf.Next(endLsn, record); err != nil {
			return nil, err
		}
		if record.Type == model.RecordNone {
			return counts, nil
		}
		fileNo, _ := vecwal.ParseLsn(record.Lsn)
		counts[fileNo]++
	}
}
