package vergen

// Placeholder is written in place of a value that is non-deterministic under
// idempotent output, or that could not be gathered.
const Placeholder = "VERGEN_IDEMPOTENT_OUTPUT"

// Environment variables that drive the emitter itself.
const (
	IdempotentEnv      = "VERGEN_IDEMPOTENT"
	SourceDateEpochEnv = "SOURCE_DATE_EPOCH"
)

// Key names. These are the environment variable names downstream code reads.
const (
	BuildDateName      = "VERGEN_BUILD_DATE"
	BuildTimestampName = "VERGEN_BUILD_TIMESTAMP"

	GoBuildDebugName        = "VERGEN_GOBUILD_DEBUG"
	GoBuildTagsName         = "VERGEN_GOBUILD_TAGS"
	GoBuildCgoEnabledName   = "VERGEN_GOBUILD_CGO_ENABLED"
	GoBuildTargetTripleName = "VERGEN_GOBUILD_TARGET_TRIPLE"
	GoBuildDependenciesName = "VERGEN_GOBUILD_DEPENDENCIES"

	GitBranchName            = "VERGEN_GIT_BRANCH"
	GitCommitAuthorEmailName = "VERGEN_GIT_COMMIT_AUTHOR_EMAIL"
	GitCommitAuthorNameName  = "VERGEN_GIT_COMMIT_AUTHOR_NAME"
	GitCommitCountName       = "VERGEN_GIT_COMMIT_COUNT"
	GitCommitDateName        = "VERGEN_GIT_COMMIT_DATE"
	GitCommitMessageName     = "VERGEN_GIT_COMMIT_MESSAGE"
	GitCommitTimestampName   = "VERGEN_GIT_COMMIT_TIMESTAMP"
	GitDescribeName          = "VERGEN_GIT_DESCRIBE"
	GitSHAName               = "VERGEN_GIT_SHA"
	GitDirtyName             = "VERGEN_GIT_DIRTY"

	GoChannelName    = "VERGEN_GO_CHANNEL"
	GoCommitDateName = "VERGEN_GO_COMMIT_DATE"
	GoCommitHashName = "VERGEN_GO_COMMIT_HASH"
	GoHostTripleName = "VERGEN_GO_HOST_TRIPLE"
	GoVersionName    = "VERGEN_GO_VERSION"
	GoSemverName     = "VERGEN_GO_SEMVER"

	SysinfoNameName         = "VERGEN_SYSINFO_NAME"
	SysinfoOSVersionName    = "VERGEN_SYSINFO_OS_VERSION"
	SysinfoUserName         = "VERGEN_SYSINFO_USER"
	SysinfoMemoryName       = "VERGEN_SYSINFO_TOTAL_MEMORY"
	SysinfoCPUVendorName    = "VERGEN_SYSINFO_CPU_VENDOR"
	SysinfoCPUCoreCountName = "VERGEN_SYSINFO_CPU_CORE_COUNT"
	SysinfoCPUNameName      = "VERGEN_SYSINFO_CPU_NAME"
	SysinfoCPUBrandName     = "VERGEN_SYSINFO_CPU_BRAND"
	SysinfoCPUFrequencyName = "VERGEN_SYSINFO_CPU_FREQUENCY"
)

// Key identifies one piece of build metadata. The declaration order is the
// emission order.
type Key int

const (
	BuildDate Key = iota
	BuildTimestamp

	GoBuildDebug
	GoBuildTags
	GoBuildCgoEnabled
	GoBuildTargetTriple
	GoBuildDependencies

	GitBranch
	GitCommitAuthorEmail
	GitCommitAuthorName
	GitCommitCount
	GitCommitDate
	GitCommitMessage
	GitCommitTimestamp
	GitDescribe
	GitSHA
	GitDirty

	GoChannel
	GoCommitDate
	GoCommitHash
	GoHostTriple
	GoVersion
	GoSemver

	SysinfoName
	SysinfoOSVersion
	SysinfoUser
	SysinfoMemory
	SysinfoCPUVendor
	SysinfoCPUCoreCount
	SysinfoCPUName
	SysinfoCPUBrand
	SysinfoCPUFrequency

	keyCount
)

type keyInfo struct {
	name     string
	goName   string
	category string
	help     string
}

var keyTable = [keyCount]keyInfo{
	BuildDate:      {BuildDateName, "BuildDate", "build", "date of the build (YYYY-MM-DD)"},
	BuildTimestamp: {BuildTimestampName, "BuildTimestamp", "build", "timestamp of the build"},

	GoBuildDebug:        {GoBuildDebugName, "GoBuildDebug", "gobuild", "true when optimizations are disabled (-gcflags -N)"},
	GoBuildTags:         {GoBuildTagsName, "GoBuildTags", "gobuild", "build tags from GOFLAGS"},
	GoBuildCgoEnabled:   {GoBuildCgoEnabledName, "GoBuildCgoEnabled", "gobuild", "value of CGO_ENABLED"},
	GoBuildTargetTriple: {GoBuildTargetTripleName, "GoBuildTargetTriple", "gobuild", "target GOOS/GOARCH"},
	GoBuildDependencies: {GoBuildDependenciesName, "GoBuildDependencies", "gobuild", "module requirements from go.mod"},

	GitBranch:            {GitBranchName, "GitBranch", "git", "current branch"},
	GitCommitAuthorEmail: {GitCommitAuthorEmailName, "GitCommitAuthorEmail", "git", "author email of HEAD"},
	GitCommitAuthorName:  {GitCommitAuthorNameName, "GitCommitAuthorName", "git", "author name of HEAD"},
	GitCommitCount:       {GitCommitCountName, "GitCommitCount", "git", "number of commits reachable from HEAD"},
	GitCommitDate:        {GitCommitDateName, "GitCommitDate", "git", "commit date of HEAD (YYYY-MM-DD)"},
	GitCommitMessage:     {GitCommitMessageName, "GitCommitMessage", "git", "subject of HEAD"},
	GitCommitTimestamp:   {GitCommitTimestampName, "GitCommitTimestamp", "git", "commit timestamp of HEAD"},
	GitDescribe:          {GitDescribeName, "GitDescribe", "git", "git describe output"},
	GitSHA:               {GitSHAName, "GitSHA", "git", "object name of HEAD"},
	GitDirty:             {GitDirtyName, "GitDirty", "git", "true when the work tree has changes"},

	GoChannel:    {GoChannelName, "GoChannel", "go", "toolchain release channel"},
	GoCommitDate: {GoCommitDateName, "GoCommitDate", "go", "commit date of a devel toolchain"},
	GoCommitHash: {GoCommitHashName, "GoCommitHash", "go", "commit hash of a devel toolchain"},
	GoHostTriple: {GoHostTripleName, "GoHostTriple", "go", "host GOOS/GOARCH"},
	GoVersion:    {GoVersionName, "GoVersion", "go", "GOVERSION as reported by the go command"},
	GoSemver:     {GoSemverName, "GoSemver", "go", "toolchain version as semver"},

	SysinfoName:         {SysinfoNameName, "SysinfoName", "sysinfo", "operating system name"},
	SysinfoOSVersion:    {SysinfoOSVersionName, "SysinfoOSVersion", "sysinfo", "operating system version"},
	SysinfoUser:         {SysinfoUserName, "SysinfoUser", "sysinfo", "user running the build"},
	SysinfoMemory:       {SysinfoMemoryName, "SysinfoTotalMemory", "sysinfo", "total memory"},
	SysinfoCPUVendor:    {SysinfoCPUVendorName, "SysinfoCPUVendor", "sysinfo", "CPU vendor"},
	SysinfoCPUCoreCount: {SysinfoCPUCoreCountName, "SysinfoCPUCoreCount", "sysinfo", "physical core count"},
	SysinfoCPUName:      {SysinfoCPUNameName, "SysinfoCPUName", "sysinfo", "logical CPU names"},
	SysinfoCPUBrand:     {SysinfoCPUBrandName, "SysinfoCPUBrand", "sysinfo", "CPU brand string"},
	SysinfoCPUFrequency: {SysinfoCPUFrequencyName, "SysinfoCPUFrequency", "sysinfo", "CPU frequency in MHz"},
}

// Name returns the environment variable name of k.
func (k Key) Name() string {
	if !k.valid() {
		return ""
	}
	return keyTable[k].name
}

// GoName returns the exported Go identifier used by the ldflags and go formats.
func (k Key) GoName() string {
	if !k.valid() {
		return ""
	}
	return keyTable[k].goName
}

// Category returns the provider family of k (build, gobuild, git, go, sysinfo).
func (k Key) Category() string {
	if !k.valid() {
		return ""
	}
	return keyTable[k].category
}

// Help returns a short description of k.
func (k Key) Help() string {
	if !k.valid() {
		return ""
	}
	return keyTable[k].help
}

func (k Key) String() string { return k.Name() }

func (k Key) valid() bool { return k >= 0 && k < keyCount }

// AllKeys returns every key in emission order.
func AllKeys() []Key {
	keys := make([]Key, 0, keyCount)
	for k := Key(0); k < keyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}

// KeyFromName looks up a key by its environment variable name.
func KeyFromName(name string) (Key, bool) {
	for k := Key(0); k < keyCount; k++ {
		if keyTable[k].name == name {
			return k, true
		}
	}
	return 0, false
}
