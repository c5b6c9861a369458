package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"vbuild.dev/pkg/vbuild/internal/domain"
	"vbuild.dev/pkg/vbuild/pkg/environ"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "vbuild"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	manifestFlagName     = "manifest"
	verboseFlagName      = "verbose"
	debugFlagName        = "debug"
	runParallelFlagName  = "parallel"
	noCompDBFlagName     = "no-compdb"
	keepBackupsFlagName  = "keep-backups"
	variantFlagName      = "variant"
	testFlagName         = "test"
	statFlagName         = "stat"
	outputFlagName       = "output"
	testsOnlyFlagName    = "tests-only"
	forceFlagName        = "force"
	manifestConfigKey    = "manifest"
	buildVerboseKey      = "build.verbose"
	runParallelConfigKey = "run.parallel"
	runExportCompDBKey   = "run.export_compdb"
	runKeepBackupsKey    = "run.keep_backups"

	toolchainCompilerKey    = "toolchain.compiler"
	toolchainPatcherKey     = "toolchain.patcher"
	toolchainInterceptorKey = "toolchain.interceptor"
	toolchainIncludeEnvKey  = "toolchain.include_env"
	toolchainMessagesEnvKey = "toolchain.messages_env"

	defaultManifest        = "vbuild-manifest.yaml"
	defaultBuildVerbose    = false
	defaultRunParallel     = 1
	defaultRunExportCompDB = true
	defaultRunKeepBackups  = true

	envPrefix = "VBUILD"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".vbuild.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(manifestConfigKey, defaultManifest)
	viper.SetDefault(buildVerboseKey, defaultBuildVerbose)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(runExportCompDBKey, defaultRunExportCompDB)
	viper.SetDefault(runKeepBackupsKey, defaultRunKeepBackups)

	// Toolchain defaults mirror the domain defaults so `vbuild init` writes them out.
	viper.SetDefault(toolchainCompilerKey, domain.DefaultCompilerWrapper)
	viper.SetDefault(toolchainPatcherKey, domain.DefaultBitcodePatcher)
	viper.SetDefault(toolchainInterceptorKey, domain.DefaultInterceptor)
	viper.SetDefault(toolchainIncludeEnvKey, domain.DefaultIncludePathEnv)
	viper.SetDefault(toolchainMessagesEnvKey, domain.DefaultMessagesEnv)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// toolchainFromConfig builds the toolchain from config, env and flags. Child
// processes inherit the current environment.
func toolchainFromConfig() domain.Toolchain {
	return domain.Toolchain{
		CompilerWrapper: viper.GetString(toolchainCompilerKey),
		BitcodePatcher:  viper.GetString(toolchainPatcherKey),
		Interceptor:     viper.GetString(toolchainInterceptorKey),
		IncludePathEnv:  viper.GetString(toolchainIncludeEnvKey),
		MessagesEnv:     viper.GetString(toolchainMessagesEnvKey),
		Verbose:         viper.GetBool(buildVerboseKey),
		BaseEnv:         environ.FromOS(),
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at the configured level; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
