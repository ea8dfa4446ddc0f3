package tiers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/anoixa/image-tier/database/models"
	"github.com/anoixa/image-tier/database/repo/artifacts"
	"github.com/anoixa/image-tier/database/repo/heights"
	tiersRepo "github.com/anoixa/image-tier/database/repo/tiers"
	"github.com/anoixa/image-tier/database/repo/users"
	imageSvc "github.com/anoixa/image-tier/internal/image"
	"github.com/anoixa/image-tier/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv 等级服务测试环境
type testEnv struct {
	db            *gorm.DB
	provider      storage.Provider
	service       *Service
	artifactsRepo *artifacts.Repository
	tiersRepo     *tiersRepo.Repository
	heightsRepo   *heights.Repository
	usersRepo     *users.Repository
}

// setupEnv 创建测试环境
func setupEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AvailableHeight{}, &models.Tier{}, &models.User{}, &models.UploadedImage{}))

	provider, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	artifactsRepository := artifacts.NewRepository(db)
	tiersRepository := tiersRepo.NewRepository(db)
	heightsRepository := heights.NewRepository(db)
	usersRepository := users.NewRepository(db)
	synchronizer := imageSvc.NewSynchronizer(artifactsRepository, provider)

	return &testEnv{
		db:            db,
		provider:      provider,
		service:       NewService(tiersRepository, heightsRepository, usersRepository, artifactsRepository, synchronizer),
		artifactsRepo: artifactsRepository,
		tiersRepo:     tiersRepository,
		heightsRepo:   heightsRepository,
		usersRepo:     usersRepository,
	}
}

// createUserWithOriginal 创建用户并上传一张原图
func (e *testEnv) createUserWithOriginal(t *testing.T, username string, tierID *uint) (*models.User, *models.UploadedImage) {
	user := &models.User{Username: username, Password: "x", TierID: tierID}
	require.NoError(t, e.db.Create(user).Error)

	img := image.NewRGBA(image.Rect(0, 0, 600, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 600; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 150, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	original := &models.UploadedImage{
		OwnerID:    user.ID,
		Owner:      *user,
		Title:      "photo.png",
		StoredPath: imageSvc.NewBlobPath(user.UUID, ".png"),
		Format:     models.FormatPNG,
		Width:      600,
		Height:     400,
	}
	require.NoError(t, e.provider.SaveWithContext(context.Background(), original.StoredPath, bytes.NewReader(buf.Bytes())))
	require.NoError(t, e.db.Create(original).Error)
	return user, original
}

// createTier 创建等级并关联高度
func (e *testEnv) createTier(t *testing.T, name string, hs ...int) *models.Tier {
	tier := &models.Tier{Name: name}
	for _, h := range hs {
		tier.ExtraHeights = append(tier.ExtraHeights, &models.AvailableHeight{Height: h})
	}
	require.NoError(t, e.db.Create(tier).Error)
	return tier
}

// TestReassignTier_RendersOnlyGainedHeights 测试等级变更只补齐新增高度
func TestReassignTier_RendersOnlyGainedHeights(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	oldTier := env.createTier(t, "silver", 400)
	user, original := env.createUserWithOriginal(t, "alice", &oldTier.ID)

	// 旧等级的衍生图已经就位
	originals, err := env.artifactsRepo.OriginalsByOwner(user.ID)
	require.NoError(t, err)
	first := env.service.synchronizer.Ensure(ctx, originals, []int{400})
	require.Equal(t, 1, first.Created)

	goldHeight := &models.AvailableHeight{Height: 800}
	require.NoError(t, env.db.Create(goldHeight).Error)
	newTier := &models.Tier{Name: "gold"}
	require.NoError(t, env.db.Create(newTier).Error)
	sharedHeight, err := env.heightsRepo.List()
	require.NoError(t, err)
	require.NoError(t, env.db.Model(newTier).Association("ExtraHeights").Append(sharedHeight))

	// 新等级 {400, 800}，旧等级 {400}：只渲染 800
	report, err := env.service.ReassignTier(ctx, user.ID, &newTier.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	children, err := env.artifactsRepo.ChildrenOf(original.ID)
	require.NoError(t, err)
	hs := make([]int, 0, len(children))
	for _, c := range children {
		hs = append(hs, c.Height)
	}
	assert.ElementsMatch(t, []int{400, 800}, hs)
}

// TestReassignTier_ToBasicDeletesNothing 测试降级不删除已渲染的衍生图
func TestReassignTier_ToBasicDeletesNothing(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	tier := env.createTier(t, "premium", 400)
	user, original := env.createUserWithOriginal(t, "alice", &tier.ID)

	originals, err := env.artifactsRepo.OriginalsByOwner(user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, env.service.synchronizer.Ensure(ctx, originals, []int{400}).Created)

	// 回落 Basic：零渲染、零删除
	report, err := env.service.ReassignTier(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)

	children, err := env.artifactsRepo.ChildrenOf(original.ID)
	require.NoError(t, err)
	assert.Len(t, children, 1)

	// 回到原等级时无需重新渲染
	report, err = env.service.ReassignTier(ctx, user.ID, &tier.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Existing)
}

// TestExtendTier_BackfillsCurrentMembers 测试等级扩展为在该等级的用户补齐新高度
func TestExtendTier_BackfillsCurrentMembers(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	tier := env.createTier(t, "premium", 400)
	user, original := env.createUserWithOriginal(t, "alice", &tier.ID)
	_, otherOriginal := env.createUserWithOriginal(t, "outsider", nil)

	originals, err := env.artifactsRepo.OriginalsByOwner(user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, env.service.synchronizer.Ensure(ctx, originals, []int{400}).Created)

	newHeight, err := env.heightsRepo.Create(800)
	require.NoError(t, err)

	report, err := env.service.ExtendTier(ctx, tier.ID, []uint{newHeight.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	children, err := env.artifactsRepo.ChildrenOf(original.ID)
	require.NoError(t, err)
	assert.Len(t, children, 2)

	// 不在该等级的用户不受影响
	otherChildren, err := env.artifactsRepo.ChildrenOf(otherOriginal.ID)
	require.NoError(t, err)
	assert.Empty(t, otherChildren)
}

// TestExtendTier_AlreadyPresentHeightIsNoop 测试重复追加已有高度不触发渲染
func TestExtendTier_AlreadyPresentHeightIsNoop(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	tier := env.createTier(t, "premium", 400)
	env.createUserWithOriginal(t, "alice", &tier.ID)

	var existing models.AvailableHeight
	require.NoError(t, env.db.Where("height = ?", 400).First(&existing).Error)

	report, err := env.service.ExtendTier(ctx, tier.ID, []uint{existing.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 0, report.Existing)
}

// TestShrinkTier_KeepsRenderedThumbnails 测试收缩等级保留已渲染的缩略图
func TestShrinkTier_KeepsRenderedThumbnails(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	tier := env.createTier(t, "premium", 400)
	user, original := env.createUserWithOriginal(t, "alice", &tier.ID)

	originals, err := env.artifactsRepo.OriginalsByOwner(user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, env.service.synchronizer.Ensure(ctx, originals, []int{400}).Created)

	var h models.AvailableHeight
	require.NoError(t, env.db.Where("height = ?", 400).First(&h).Error)
	require.NoError(t, env.service.ShrinkTier(ctx, tier.ID, h.ID))

	// 等级不再包含该高度
	reloaded, err := env.tiersRepo.GetByID(tier.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.HasHeight(400))

	// 衍生图保留
	children, err := env.artifactsRepo.ChildrenOf(original.ID)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}
