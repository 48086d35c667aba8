package generators

import (
	"context"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"go.eggybyte.com/stackgen/core/errors"
	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/schema"
	"go.eggybyte.com/stackgen/internal/templates"
	"go.eggybyte.com/stackgen/internal/typemap"
)

func testProject() *configschema.ProjectConfig {
	cfg := &configschema.ProjectConfig{
		Name:           "shop",
		Frontend:       "web",
		Backend:        "api",
		App:            "shop-ui",
		MobileApp:      "shop_app",
		BackendPackage: "com.example.shop",
	}
	configschema.CheckProject(cfg, configschema.NewDiagnostics())
	return cfg
}

func productSchema() *schema.EntitySchema {
	return &schema.EntitySchema{Entities: []schema.Entity{{
		Name: "Product",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeNumber},
			{Name: "name", Type: schema.TypeString},
			{Name: "price", Type: schema.TypeNumber},
		},
	}}}
}

func mixedSchema() *schema.EntitySchema {
	return &schema.EntitySchema{Entities: []schema.Entity{
		{
			Name: "order_item",
			Columns: []schema.Column{
				{Name: "ID", Type: schema.TypeString},
				{Name: "quantity", Type: schema.TypeNumber},
				{Name: "gift_wrapped", Type: schema.TypeBoolean},
				{Name: "placed_at", Type: "date"},
			},
		},
		{
			Name: "Category",
			Columns: []schema.Column{
				{Name: "title", Type: schema.TypeString},
			},
		},
	}}
}

func plan(t *testing.T, s *schema.EntitySchema, targets ...typemap.Target) map[string]string {
	t.Helper()
	if len(targets) == 0 {
		targets = typemap.AllTargets
	}
	p := NewPipeline(nil, nil, WithTargets(targets...))
	files, err := p.Plan(context.Background(), s, testProject())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	out := make(map[string]string, len(files))
	for _, f := range files {
		if _, dup := out[f.Path]; dup {
			t.Fatalf("duplicate output path %s", f.Path)
		}
		out[f.Path] = f.Content
	}
	return out
}

func mustFile(t *testing.T, files map[string]string, path string) string {
	t.Helper()
	content, ok := files[path]
	if !ok {
		t.Fatalf("expected generated file %s", path)
	}
	return content
}

func assertContains(t *testing.T, path, content string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(content, w) {
			t.Errorf("%s: expected to contain %q\n%s", path, w, content)
		}
	}
}

func assertNotContains(t *testing.T, path, content string, unwanted ...string) {
	t.Helper()
	for _, w := range unwanted {
		if strings.Contains(content, w) {
			t.Errorf("%s: expected not to contain %q\n%s", path, w, content)
		}
	}
}

const javaDir = "shop/api/src/main/java/com/example/shop/"

func TestProductEndToEnd(t *testing.T) {
	files := plan(t, productSchema())

	model := mustFile(t, files, javaDir+"model/Product.java")
	assertContains(t, "model", model,
		"package com.example.shop.model;",
		"@Entity",
		"@GeneratedValue(strategy = GenerationType.IDENTITY)\n    private Long id;",
		"private String name;",
		"private Double price;",
		"public Product() {",
		"public Product(String name, Double price) {",
	)
	if n := strings.Count(model, "private Long id;"); n != 1 {
		t.Errorf("model: expected exactly one id field, found %d", n)
	}
	assertNotContains(t, "model", model, "private Double id;")

	dto := mustFile(t, files, javaDir+"dto/ProductDto.java")
	assertContains(t, "dto", dto, "private Long id;", "private String name;", "private Double price;")

	mapper := mustFile(t, files, javaDir+"mapper/ProductMapper.java")
	assertContains(t, "mapper", mapper,
		"if (model == null) {\n            return null;",
		"if (dto == null) {\n            return null;",
		"dto.setPrice(model.getPrice());",
		"model.setName(dto.getName());",
	)

	repo := mustFile(t, files, javaDir+"repository/ProductRepository.java")
	assertContains(t, "repository", repo, "extends JpaRepository<Product, Long>")

	service := mustFile(t, files, javaDir+"service/ProductService.java")
	assertContains(t, "service", service,
		"public List<ProductDto> findAll()",
		"public Optional<ProductDto> findById(Long id)",
		"public ProductDto save(ProductDto dto)",
		"public void delete(Long id)",
	)

	controller := mustFile(t, files, javaDir+"controller/ProductController.java")
	assertContains(t, "controller", controller,
		`@RequestMapping("/api/products")`,
		"@GetMapping\n",
		`@GetMapping("/{id}")`,
		"@PostMapping\n",
		`@PutMapping("/{id}")`,
		`@DeleteMapping("/{id}")`,
		"ResponseEntity.notFound().build()",
		"HttpStatus.CREATED",
		"ResponseEntity.noContent().build()",
	)

	app := "shop/web/shop-ui/"
	comp := mustFile(t, files, app+"src/app/components/product/product.component.ts")
	assertContains(t, "component", comp,
		"import { ProductService } from '../../core/services/product.service';",
		"name: ['', [Validators.required]]",
		"price: [null as number | null, [Validators.required]]",
		"import { InputNumberModule } from 'primeng/inputnumber';",
	)
	assertNotContains(t, "component", comp, "id:", "CheckboxModule")
	if n := strings.Count(comp, "Validators.required]"); n != 2 {
		t.Errorf("component: expected 2 required controls, found %d", n)
	}

	svc := mustFile(t, files, app+"src/app/core/services/product.service.ts")
	assertContains(t, "frontend service", svc,
		"private apiUrl = '/api/products';",
		"getAll()", "getById(id: number)", "create(dto: ProductDto)", "update(id: number, dto: ProductDto)", "delete(id: number)",
	)

	tsDto := mustFile(t, files, app+"src/app/core/models/product.dto.ts")
	assertContains(t, "ts dto", tsDto, "id?: number;", "name: string;", "price: number;")

	lib := "shop/mobile/shop_app/lib/"
	dart := mustFile(t, files, lib+"models/product_model.dart")
	assertContains(t, "dart model", dart,
		"final String? name;",
		"final num? price;",
		"name: json['name'] as String?,",
	)
	assertNotContains(t, "dart model", dart, " id;", "json['id']")

	mobileSvc := mustFile(t, files, lib+"services/product_service.dart")
	assertContains(t, "dart service", mobileSvc, "'http://10.0.2.2:8080/api/products'")
}

func TestDeterminism(t *testing.T) {
	for name, s := range map[string]*schema.EntitySchema{"product": productSchema(), "mixed": mixedSchema()} {
		t.Run(name, func(t *testing.T) {
			p := NewPipeline(nil, nil)
			first, err := p.Plan(context.Background(), s, testProject())
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			second, err := NewPipeline(nil, nil).Plan(context.Background(), s, testProject())
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Error("two runs over the same input produced different output")
			}
		})
	}
}

func TestIDExclusion(t *testing.T) {
	files := plan(t, mixedSchema())

	// Constructor parameter lists, form controls and Dart fields never carry an id.
	ctor := regexp.MustCompile(`public OrderItem\(([^)]*)\)`)
	for _, m := range ctor.FindAllStringSubmatch(files[javaDir+"model/OrderItem.java"], -1) {
		if strings.Contains(strings.ToLower(m[1]), " id") {
			t.Errorf("constructor includes id: %s", m[0])
		}
	}
	model := files[javaDir+"model/OrderItem.java"]
	assertContains(t, "model", model, "public OrderItem(Double quantity, Boolean giftWrapped, Object placedAt) {")
	assertNotContains(t, "model", model, "String id", "String ID")

	comp := files["shop/web/shop-ui/src/app/components/orderitem/orderitem.component.ts"]
	assertNotContains(t, "component", comp, "id:", "ID:")

	html := files["shop/web/shop-ui/src/app/components/orderitem/orderitem.component.html"]
	assertNotContains(t, "html", html, `formControlName="id"`, `formControlName="ID"`)

	dart := files["shop/mobile/shop_app/lib/models/orderitem_model.dart"]
	assertNotContains(t, "dart", dart, " id;", " ID;", "this.id", "this.ID")

	labels := files["shop/web/shop-ui/src/assets/i18n/en.json"]
	assertNotContains(t, "en.json", labels, "FIELD_ID")
}

func TestIDSpellingsNeverBecomeFields(t *testing.T) {
	for _, name := range []string{"_id", "id_", "Id__"} {
		t.Run(name, func(t *testing.T) {
			s := &schema.EntitySchema{Entities: []schema.Entity{{
				Name:    "Product",
				Columns: []schema.Column{{Name: name, Type: schema.TypeNumber}, {Name: "name", Type: schema.TypeString}},
			}}}
			files := plan(t, s)

			model := files[javaDir+"model/Product.java"]
			if n := strings.Count(model, "private Long id;"); n != 1 {
				t.Errorf("Product.java declares id %d times, want 1", n)
			}
			assertContains(t, "model", model, "public Product(String name) {")
			assertNotContains(t, "model", model, "private Double id;", "Double id,")

			comp := files["shop/web/shop-ui/src/app/components/product/product.component.ts"]
			assertNotContains(t, "component", comp, "id: [")

			dart := files["shop/mobile/shop_app/lib/models/product_model.dart"]
			assertNotContains(t, "dart", dart, "num? id")
		})
	}
}

func TestWidgetAndTypeSelection(t *testing.T) {
	files := plan(t, mixedSchema())
	base := "shop/web/shop-ui/src/app/components/orderitem/orderitem."

	html := files[base+"component.html"]
	assertContains(t, "html", html,
		`<p-inputNumber inputId="quantity" formControlName="quantity" mode="decimal" [showButtons]="true"></p-inputNumber>`,
		`<p-checkbox inputId="giftWrapped" formControlName="giftWrapped" [binary]="true"></p-checkbox>`,
		`<input id="placedAt" type="text" pInputText formControlName="placedAt" />`,
		"{{ 'ORDER_ITEM_FORM_TITLE' | translate }}",
		"{{ 'FIELD_GIFT_WRAPPED' | translate }}",
	)

	comp := files[base+"component.ts"]
	assertContains(t, "component", comp,
		"giftWrapped: [false, [Validators.required]]",
		"placedAt: [null, [Validators.required]]",
		"CheckboxModule",
	)

	dto := files["shop/web/shop-ui/src/app/core/models/orderitem.dto.ts"]
	assertContains(t, "ts dto", dto, "quantity: number;", "giftWrapped: boolean;", "placedAt: any;")

	dart := files["shop/mobile/shop_app/lib/models/orderitem_model.dart"]
	assertContains(t, "dart", dart, "final num? quantity;", "final bool? giftWrapped;", "final dynamic placedAt;", "placedAt: json['placedAt'],")

	screen := files["shop/mobile/shop_app/lib/screens/orderitem_list_screen.dart"]
	assertContains(t, "screen", screen, "Text(item.quantity?.toString() ?? '')")
	category := files["shop/mobile/shop_app/lib/screens/category_list_screen.dart"]
	assertContains(t, "screen", category, "Text(item.title ?? '')")
}

func TestNamingConsistency(t *testing.T) {
	files := plan(t, mixedSchema())

	for path, content := range files {
		// The canonical spelling is never re-cased independently.
		if strings.Contains(content, "order_item") || strings.Contains(path, "order_item") {
			t.Errorf("%s: contains the unnormalized name order_item", path)
		}
	}

	assertContains(t, "controller", files[javaDir+"controller/OrderItemController.java"], `@RequestMapping("/api/orderitems")`)
	assertContains(t, "frontend service", files["shop/web/shop-ui/src/app/core/services/orderitem.service.ts"], "'/api/orderitems'")
	assertContains(t, "mobile service", files["shop/mobile/shop_app/lib/services/orderitem_service.dart"], "/api/orderitems'")
	assertContains(t, "mobile main", files["shop/mobile/shop_app/lib/main.dart"],
		"'/orderitems': (context) => const OrderItemListScreen(),",
		"'/categories': (context) => const CategoryListScreen(),",
		"ChangeNotifierProvider(create: (_) => OrderItemProvider()),",
	)
	assertContains(t, "provider", files["shop/mobile/shop_app/lib/providers/category_provider.dart"],
		"Future<void> fetchCategories() async {",
		"List<Category> get categories => _categories;",
		"} finally {\n      _isLoading = false;",
	)
	assertContains(t, "routes", files["shop/web/shop-ui/src/app/app.routes.ts"],
		"redirectTo: 'orderitem'",
		"loadComponent: () => import('./components/category/category.component').then(m => m.CategoryComponent)",
	)
}

func TestCrossReferenceClosure(t *testing.T) {
	loader := templates.NewLoader()
	em := NewFrontendEmitter(loader)
	files, err := Emit(em, mixedSchema(), testProject())
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := em.Verify(files); err != nil {
		t.Fatalf("Verify on complete output: %v", err)
	}

	var withoutService []File
	for _, f := range files {
		if !strings.HasSuffix(f.Path, "category.service.ts") {
			withoutService = append(withoutService, f)
		}
	}
	err = em.Verify(withoutService)
	if !errors.IsCode(err, errors.CodeInternal) {
		t.Fatalf("Expected INTERNAL for a dangling import, got %v", err)
	}
	if !strings.Contains(err.Error(), "CategoryService") {
		t.Errorf("Expected error to name CategoryService, got %v", err)
	}

	var withoutLabels []File
	for _, f := range files {
		if !strings.HasSuffix(f.Path, "en.json") {
			withoutLabels = append(withoutLabels, f)
		}
	}
	if err := em.Verify(withoutLabels); err == nil || !strings.Contains(err.Error(), "translation key") {
		t.Errorf("Expected missing translation keys to be reported, got %v", err)
	}
}

func TestEmptySchema(t *testing.T) {
	files := plan(t, &schema.EntitySchema{})

	routes := mustFile(t, files, "shop/web/shop-ui/src/app/app.routes.ts")
	assertContains(t, "routes", routes, "export const routes: Routes = [];")
	assertNotContains(t, "routes", routes, "redirectTo")

	main := mustFile(t, files, "shop/mobile/shop_app/lib/main.dart")
	assertNotContains(t, "main", main, "MultiProvider", "package:provider/provider.dart")
	assertContains(t, "main", main, "home: const HomeScreen(),")

	labels := mustFile(t, files, "shop/web/shop-ui/src/assets/i18n/en.json")
	if labels != "{\n  \"SAVE_BUTTON\": \"Save\"\n}\n" {
		t.Errorf("en.json = %q", labels)
	}

	for path := range files {
		if strings.HasPrefix(path, "shop/api/") {
			t.Errorf("unexpected backend file for empty schema: %s", path)
		}
	}
}

func TestLabels(t *testing.T) {
	files := plan(t, mixedSchema(), typemap.Frontend)
	got := files["shop/web/shop-ui/src/assets/i18n/en.json"]
	want := `{
  "ORDER_ITEM_FORM_TITLE": "Order Item Form",
  "FIELD_QUANTITY": "Quantity",
  "FIELD_GIFT_WRAPPED": "Gift Wrapped",
  "FIELD_PLACED_AT": "Placed At",
  "CATEGORY_FORM_TITLE": "Category Form",
  "FIELD_TITLE": "Title",
  "SAVE_BUTTON": "Save"
}
`
	if got != want {
		t.Errorf("en.json =\n%s\nwant\n%s", got, want)
	}
}

func TestTargetSelection(t *testing.T) {
	files := plan(t, productSchema(), typemap.Mobile)
	for path := range files {
		if !strings.HasPrefix(path, "shop/mobile/shop_app/lib/") {
			t.Errorf("unexpected file outside mobile tree: %s", path)
		}
	}
	if len(files) != 5 {
		t.Errorf("expected 4 entity files and main.dart, got %d", len(files))
	}
}

func TestNewEmitterUnknownTarget(t *testing.T) {
	if _, err := NewEmitter("desktop", templates.NewLoader()); !errors.IsCode(err, errors.CodeInvalidArgument) {
		t.Errorf("Expected INVALID_ARGUMENT, got %v", err)
	}
}
