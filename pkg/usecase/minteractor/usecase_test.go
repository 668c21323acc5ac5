// 指示: miu200521358
package minteractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/merrors"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/mmath"
	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
)

// fakeMotionReader は .fake 拡張子のみを読み込み、名前に broken を含む場合は失敗する。
type fakeMotionReader struct {
	loaded []string
}

func (r *fakeMotionReader) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".fake")
}

func (r *fakeMotionReader) Load(path string, fps float64) (*model.DecodedMotion, error) {
	r.loaded = append(r.loaded, path)
	if strings.Contains(filepath.Base(path), "broken") {
		return nil, merrors.NewIoError("読み込み失敗: %s", nil, path)
	}
	motion := newWalkingMotion()
	motion.Fps = fps
	motion.SourceFile = filepath.Base(path)
	return motion, nil
}

type fakeSkeletonReader struct {
	skeleton *model.Skeleton
}

func (r *fakeSkeletonReader) Load(path string) (*model.Skeleton, error) {
	return r.skeleton.Clone(), nil
}

type fakeSkeletonWriter struct {
	paths     []string
	skeletons []*model.Skeleton
}

func (w *fakeSkeletonWriter) Save(path string, skeleton *model.Skeleton) error {
	w.paths = append(w.paths, path)
	w.skeletons = append(w.skeletons, skeleton)
	return nil
}

type fakeReportWriter struct {
	paths   []string
	reports []*model.BatchReport
}

func (w *fakeReportWriter) Save(path string, report *model.BatchReport) error {
	w.paths = append(w.paths, path)
	w.reports = append(w.reports, report)
	return nil
}

type recordingReporter struct {
	events []ConvertProgressEventType
	items  []model.BatchItem
}

func (r *recordingReporter) ReportConvertProgress(event ConvertProgressEvent) {
	r.events = append(r.events, event.Type)
}

func (r *recordingReporter) ReportBatchItem(item model.BatchItem) {
	r.items = append(r.items, item)
}

func newWalkingMotion() *model.DecodedMotion {
	return newTestMotion(
		[]float64{0, 0.5, 1},
		&model.JointTrack{Name: "Hips", Positions: []mmath.Vec3{{Y: 1}, {X: 0.1, Y: 1}, {X: 0.2, Y: 1}}},
		&model.JointTrack{Name: "Spine", ParentName: "Hips", Positions: []mmath.Vec3{{Y: 2}, {X: 0.2, Y: 2}, {X: 0.5, Y: 2}}},
	)
}

func newTargetSkeleton() *model.Skeleton {
	return &model.Skeleton{
		Bones: []*model.Bone{
			model.NewBone("root", ""),
			model.NewBone("HIPS", "root"),
		},
		Animations: map[string]*model.Animation{},
	}
}

type usecaseFixture struct {
	usecase  *Mocap2SpineUsecase
	motions  *fakeMotionReader
	skeleton *fakeSkeletonWriter
	reports  *fakeReportWriter
}

func newUsecaseFixture() *usecaseFixture {
	fixture := &usecaseFixture{
		motions:  &fakeMotionReader{},
		skeleton: &fakeSkeletonWriter{},
		reports:  &fakeReportWriter{},
	}
	fixture.usecase = NewMocap2SpineUsecase(Mocap2SpineUsecaseDeps{
		MotionReader:   fixture.motions,
		SkeletonReader: &fakeSkeletonReader{skeleton: newTargetSkeleton()},
		SkeletonWriter: fixture.skeleton,
		ReportWriter:   fixture.reports,
	})
	return fixture
}

func touchFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s failed: %v", name, err)
		}
	}
}

func TestConvertMotionMergesAnimationWithoutMutatingInput(t *testing.T) {
	fixture := newUsecaseFixture()
	reporter := &recordingReporter{}
	input := newTargetSkeleton()

	result, err := fixture.usecase.ConvertMotion(ConvertRequest{
		MotionPath:       "clips/walk.fake",
		Skeleton:         input,
		Profile:          hipsProfile(),
		RootMotion:       "root",
		ProgressReporter: reporter,
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if result.AnimationName != "FBX_walk" {
		t.Fatalf("animation name: got=%s want=%s", result.AnimationName, "FBX_walk")
	}
	if _, ok := result.Skeleton.Animations["FBX_walk"]; !ok {
		t.Fatalf("merged animation missing: %v", result.Skeleton.AnimationNames())
	}
	if len(input.Animations) != 0 {
		t.Fatalf("input skeleton changed: %v", input.AnimationNames())
	}
	if result.SkeletonReport == nil || result.SkeletonReport.Mode != model.SkeletonModeDisabled {
		t.Fatalf("skeleton report: got=%+v", result.SkeletonReport)
	}
	if result.Projected == nil || len(result.Projected.FrameTimes) != 3 {
		t.Fatalf("projected motion missing")
	}

	want := []ConvertProgressEventType{
		ConvertProgressEventTypeMotionLoaded,
		ConvertProgressEventTypeCanonicalized,
		ConvertProgressEventTypeSkeletonConverted,
		ConvertProgressEventTypeProjected,
		ConvertProgressEventTypeRetargeted,
		ConvertProgressEventTypeMerged,
	}
	if len(reporter.events) != len(want) {
		t.Fatalf("events: got=%v want=%v", reporter.events, want)
	}
	for i := range want {
		if reporter.events[i] != want[i] {
			t.Fatalf("event %d: got=%s want=%s", i, reporter.events[i], want[i])
		}
	}
}

func TestConvertMotionAvoidsAnimationNameCollision(t *testing.T) {
	fixture := newUsecaseFixture()
	input := newTargetSkeleton()
	input.Animations["FBX_walk"] = &model.Animation{}

	result, err := fixture.usecase.ConvertMotion(ConvertRequest{
		MotionPath: "walk.fake",
		Skeleton:   input,
		Profile:    hipsProfile(),
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if result.AnimationName != "FBX_walk_fbx" {
		t.Fatalf("animation name: got=%s want=%s", result.AnimationName, "FBX_walk_fbx")
	}
	if len(result.Skeleton.Animations) != 2 {
		t.Fatalf("animations: got=%v", result.Skeleton.AnimationNames())
	}
}

func TestConvertMotionRequiresSkeleton(t *testing.T) {
	fixture := newUsecaseFixture()
	_, err := fixture.usecase.ConvertMotion(ConvertRequest{MotionPath: "walk.fake"})
	if !merrors.IsInputError(err) {
		t.Fatalf("error kind: got=%v want=%v", merrors.Classify(err), merrors.KindInput)
	}
}

func TestConvertMotionRejectsUnsupportedFormat(t *testing.T) {
	fixture := newUsecaseFixture()
	_, err := fixture.usecase.ConvertMotion(ConvertRequest{MotionPath: "walk.bvh", Skeleton: newTargetSkeleton()})
	if !merrors.IsInputError(err) {
		t.Fatalf("error kind: got=%v want=%v", merrors.Classify(err), merrors.KindInput)
	}
}

func TestRunBatchDirectoryThreadsSkeletonAndRecordsFailures(t *testing.T) {
	dir := t.TempDir()
	motionDir := filepath.Join(dir, "motions")
	if err := os.MkdirAll(motionDir, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	touchFiles(t, motionDir, "c_run.fake", "a_broken.fake", "b_walk.fake", "notes.txt")

	fixture := newUsecaseFixture()
	reporter := &recordingReporter{}
	skeletonPath := filepath.Join(dir, "rig.json")
	result, err := fixture.usecase.RunBatch(context.Background(), BatchRequest{
		MotionDir:    motionDir,
		SkeletonPath: skeletonPath,
		ItemReporter: reporter,
	})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	report := result.Report
	if report.FilesProcessed != 3 || report.FilesSucceeded != 2 || report.FilesFailed != 1 {
		t.Fatalf("counts: got=%d/%d/%d want=3/2/1", report.FilesProcessed, report.FilesSucceeded, report.FilesFailed)
	}
	if report.Items[0].Status != model.BatchStatusFailed || report.Items[0].ErrorKind != string(merrors.KindIo) {
		t.Fatalf("failed item: got=%+v", report.Items[0])
	}
	if report.Items[1].AnimationName != "FBX_b_walk" || report.Items[2].AnimationName != "FBX_c_run" {
		t.Fatalf("animation names: got=%s,%s", report.Items[1].AnimationName, report.Items[2].AnimationName)
	}
	if len(reporter.items) != 3 {
		t.Fatalf("reported items: got=%d want=%d", len(reporter.items), 3)
	}

	if !result.OutputWritten || len(fixture.skeleton.skeletons) != 1 {
		t.Fatalf("output should be written once")
	}
	saved := fixture.skeleton.skeletons[0]
	for _, name := range []string{"FBX_b_walk", "FBX_c_run"} {
		if _, ok := saved.Animations[name]; !ok {
			t.Fatalf("animation %s missing: %v", name, saved.AnimationNames())
		}
	}
	if got, want := fixture.skeleton.paths[0], filepath.Join(dir, "rig.generated.json"); got != want {
		t.Fatalf("output path: got=%s want=%s", got, want)
	}
	if got, want := fixture.reports.paths[0], filepath.Join(dir, "rig.generated.report.json"); got != want {
		t.Fatalf("report path: got=%s want=%s", got, want)
	}
	for _, loaded := range fixture.motions.loaded {
		if strings.HasSuffix(loaded, ".txt") {
			t.Fatalf("unsupported file was loaded: %s", loaded)
		}
	}
}

func TestRunBatchWithoutSuccessWritesReportOnly(t *testing.T) {
	dir := t.TempDir()
	fixture := newUsecaseFixture()
	result, err := fixture.usecase.RunBatch(context.Background(), BatchRequest{
		MotionPath:   filepath.Join(dir, "broken.fake"),
		SkeletonPath: filepath.Join(dir, "rig.json"),
	})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if result.OutputWritten || len(fixture.skeleton.skeletons) != 0 {
		t.Fatalf("output should not be written")
	}
	if len(fixture.reports.reports) != 1 || fixture.reports.reports[0].FilesFailed != 1 {
		t.Fatalf("report should record the failure")
	}
}

func TestRunBatchValidatesMotionArguments(t *testing.T) {
	fixture := newUsecaseFixture()
	cases := []BatchRequest{
		{SkeletonPath: "rig.json"},
		{SkeletonPath: "rig.json", MotionPath: "walk.fake", MotionDir: "motions"},
		{MotionPath: "walk.fake"},
	}
	for i, request := range cases {
		_, err := fixture.usecase.RunBatch(context.Background(), request)
		if !merrors.IsInputError(err) {
			t.Fatalf("case %d error kind: got=%v want=%v", i, merrors.Classify(err), merrors.KindInput)
		}
	}
}

func TestRunBatchStopsOnCancelledContext(t *testing.T) {
	dir := t.TempDir()
	fixture := newUsecaseFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fixture.usecase.RunBatch(ctx, BatchRequest{
		MotionPath:   filepath.Join(dir, "walk.fake"),
		SkeletonPath: filepath.Join(dir, "rig.json"),
	})
	if err == nil {
		t.Fatalf("cancelled batch should fail")
	}
	if len(fixture.reports.reports) != 0 {
		t.Fatalf("cancelled batch should not write a report")
	}
}

func TestOutputLayoutPaths(t *testing.T) {
	skeletonPath := filepath.Join("rigs", "hero.json")
	if got, want := BuildDefaultOutputPath(skeletonPath), filepath.Join("rigs", "hero.generated.json"); got != want {
		t.Fatalf("output path: got=%s want=%s", got, want)
	}
	if got, want := BuildDefaultReportPath(skeletonPath), filepath.Join("rigs", "hero.generated.report.json"); got != want {
		t.Fatalf("report path: got=%s want=%s", got, want)
	}
	if got, want := BuildCurvePlotPath("plots", filepath.Join("m", "walk.glb")), filepath.Join("plots", "walk.curves.png"); got != want {
		t.Fatalf("plot path: got=%s want=%s", got, want)
	}
	if got := BuildCurvePlotPath("", "walk.glb"); got != "" {
		t.Fatalf("plot path without dir: got=%s want=empty", got)
	}
}

func TestFormatGeneratedAtUsesUTC(t *testing.T) {
	local := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("JST", 9*60*60))
	if got, want := formatGeneratedAt(local), "2024-01-01T18:04:05Z"; got != want {
		t.Fatalf("generated at: got=%s want=%s", got, want)
	}
}

func TestListMotionFilesSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "b.fake", "a.fake", "readme.md")
	if err := os.MkdirAll(filepath.Join(dir, "sub.fake"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	reader := &fakeMotionReader{}
	files, err := ListMotionFiles(dir, reader.CanLoad)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.fake" || filepath.Base(files[1]) != "b.fake" {
		t.Fatalf("files: got=%v", files)
	}
	if _, err := ListMotionFiles(filepath.Join(dir, "missing"), nil); err == nil {
		t.Fatalf("missing directory should fail")
	}
}
