package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RifeWang/vecwal"
)

var rootCmd = &cobra.Command{
	Use:   "walctl",
	Short: "Inspect vecwal log directories",
	Long: `walctl reads a wal directory the way the storage engine would
recover it: it scans the segment files, rebuilds the lsn range and
walks the records. It never writes and never takes the directory
lock, so it is safe to point at a live log.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg := viper.GetString("config"); cfg != "" {
			viper.SetConfigFile(cfg)
			if err := viper.ReadInConfig(); err != nil {
				return err
			}
		}
		if viper.GetString("path") == "" {
			return fmt.Errorf("wal directory is required (--path, WALCTL_PATH or config file)")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("path", "p", "", "wal directory")
	rootCmd.PersistentFlags().String("config", "", "config file")
	rootCmd.PersistentFlags().Uint32("buffer-size", vecwal.DefaultBufferSize, "buffer capacity used while reading")

	viper.SetEnvPrefix("WALCTL")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("path", rootCmd.PersistentFlags().Lookup("path"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("buffer-size", rootCmd.PersistentFlags().Lookup("buffer-size"))

	rootCmd.AddCommand(dumpCmd, statCmd, metaCmd)
}

// openLog rebuilds a read-only buffer over the directory's full lsn
// range. Returns a nil buffer when the directory holds no segments.
func openLog() (*vecwal.Buffer, uint64, error) {
	dir := viper.GetString("path")

	segments, err := vecwal.ListSegments(dir)
	if err != nil {
		return nil, 0, err
	}
	if segments.Len() == 0 {
		return nil, 0, nil
	}

	min, max := segments.Min(), segments.Max()
	startLsn := vecwal.BuildLsn(min.FileNo, 0)
	endLsn := vecwal.BuildLsn(max.FileNo, uint32(max.Size))

	buf := vecwal.NewBuffer(dir, vecwal.WithBufferSize(viper.GetUint32("buffer-size")))
	if err = buf.Init(startLsn, endLsn); err != nil {
		return nil, 0, err
	}
	return buf, endLsn, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
