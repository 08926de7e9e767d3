package workflow

import (
	"strings"

	"github.com/github/gh-pipelines/pkg/logger"
)

var placeholdersLog = logger.New("workflow:placeholders")

// Placeholders left in stack templates by synthesis.
const (
	AccountPlaceholder   = "${AWS::AccountId}"
	RegionPlaceholder    = "${AWS::Region}"
	PartitionPlaceholder = "${AWS::Partition}"
	URLSuffixPlaceholder = "${AWS::URLSuffix}"
)

// AssetHashOutput is the output every publish job declares.
const AssetHashOutput = "asset-hash"

// PlaceholderValues are the literal values substituted for placeholders.
type PlaceholderValues struct {
	Account   string
	Region    string
	Partition string
	URLSuffix string
}

// PlaceholderValuesFor derives the partition and URL suffix from region.
func PlaceholderValuesFor(account, region string) PlaceholderValues {
	v := PlaceholderValues{Account: account, Region: region, Partition: "aws", URLSuffix: "amazonaws.com"}
	switch {
	case strings.HasPrefix(region, "cn-"):
		v.Partition, v.URLSuffix = "aws-cn", "amazonaws.com.cn"
	case strings.HasPrefix(region, "us-gov-"):
		v.Partition = "aws-us-gov"
	case strings.HasPrefix(region, "us-isob-"):
		v.Partition, v.URLSuffix = "aws-iso-b", "sc2s.sgov.gov"
	case strings.HasPrefix(region, "us-iso-"):
		v.Partition, v.URLSuffix = "aws-iso", "c2s.ic.gov"
	}
	return v
}

// ResolvePlaceholders substitutes every placeholder in s.
func ResolvePlaceholders(s string, v PlaceholderValues) string {
	return strings.NewReplacer(
		AccountPlaceholder, v.Account,
		RegionPlaceholder, v.Region,
		PartitionPlaceholder, v.Partition,
		URLSuffixPlaceholder, v.URLSuffix,
	).Replace(s)
}

// assetHashRegistry maps asset ids to the job that publishes them. Entries
// are written once.
type assetHashRegistry struct {
	jobs map[string]string
}

func newAssetHashRegistry() *assetHashRegistry {
	return &assetHashRegistry{jobs: make(map[string]string)}
}

func (r *assetHashRegistry) register(assetID, jobID string) error {
	if existing, ok := r.jobs[assetID]; ok && existing != jobID {
		return newCompileError(KindDuplicateJob, jobID,
			"asset %s is already published by job %s", assetID, existing)
	}
	placeholdersLog.Printf("Asset %s is published by job %s", assetID, jobID)
	r.jobs[assetID] = jobID
	return nil
}

func (r *assetHashRegistry) lookup(assetID string) (string, bool) {
	jobID, ok := r.jobs[assetID]
	return jobID, ok
}

// rewriteTemplate replaces the asset hash inside template with a reference
// to the asset-hash output of the job that published it.
func (r *assetHashRegistry) rewriteTemplate(nodeID, template, assetID string) (string, error) {
	jobID, ok := r.lookup(assetID)
	if !ok {
		return "", newCompileError(KindCrossReference, nodeID,
			"template asset hash %s not found among the publishing jobs; the asset must be published before the stack is deployed", assetID)
	}
	if !strings.Contains(template, assetID) {
		return "", newCompileError(KindMissingData, nodeID,
			"template location %s does not contain the template asset hash %s", template, assetID)
	}
	return strings.ReplaceAll(template, assetID, Interpolate(NewJobOutputRef(jobID, AssetHashOutput))), nil
}
