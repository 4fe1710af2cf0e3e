package schema

// Default builds the registry with the ten managed entities of the
// store: catalog (producto, categoria), people (usuario, direccion),
// sales (orden, orden_detalle) and the geographic hierarchy
// departamento → municipio → localidad → zona.
func Default() *Registry {
	r := NewRegistry()

	r.MustRegister(&Entity{
		Name:    "producto",
		Label:   "Producto",
		Table:   "producto",
		IDField: "id",
		SelectColumns: []string{
			"nombre", "descripcion", "precio", "stock", "imagen_url", "id_categoria",
		},
		Joins: []Join{
			{Table: "categoria", Alias: "categoria", LocalKey: "id_categoria", ForeignKey: "id", Columns: []string{"nombre"}},
		},
		Columns: []Column{
			{Header: "Nombre de Producto", Path: "nombre"},
			{Header: "Imagen", Path: "imagen_url", Format: FormatImage},
			{Header: "Descripción", Path: "descripcion", Format: FormatTruncate, TruncateAt: 50},
			{Header: "Precio Unitario", Path: "precio", Format: FormatMoney},
			{Header: "Stock Actual", Path: "stock"},
			{Header: "Categoría", Path: "categoria.nombre"},
		},
		SearchFields: []string{"nombre", "descripcion", "categoria.nombre"},
		FormFields: []Field{
			{Name: "nombre", Label: "Nombre del Producto", Kind: KindText, Required: true},
			{Name: "descripcion", Label: "Descripción", Kind: KindTextarea},
			{Name: "precio", Label: "Precio Unitario (Bs.)", Kind: KindNumber, Required: true},
			{Name: "stock", Label: "Stock Actual", Kind: KindNumber, Required: true},
			{Name: "file_upload", Label: "Subir Imagen (Max 2MB)", Kind: KindFile},
			{Name: "id_categoria", Label: "Categoría", Kind: KindSelect, Required: true,
				Source: &OptionSource{Entity: "categoria"}},
			{Name: "imagen_url", Label: "Imagen URL", Kind: KindHidden},
		},
		OptionLabelFields: []string{"nombre"},
		AllowCreate:       true,
		FileField:         "file_upload",
		FileURLField:      "imagen_url",
	})

	r.MustRegister(&Entity{
		Name:          "categoria",
		Label:         "Categoría",
		Table:         "categoria",
		IDField:       "id",
		SelectColumns: []string{"nombre"},
		// The visible column is intentionally absent from the table
		// view for this entity.
		Columns: []Column{
			{Header: "Nombre de Categoría", Path: "nombre"},
		},
		SearchFields: []string{"nombre"},
		FormFields: []Field{
			{Name: "nombre", Label: "Nombre de la Categoría", Kind: KindText, Required: true, MaxLength: 50},
		},
		OptionLabelFields: []string{"nombre"},
		AllowCreate:       true,
		AllowRestore:      true,
	})

	r.MustRegister(&Entity{
		Name:    "usuario",
		Label:   "Usuario",
		Table:   "usuario",
		IDField: "id",
		UUIDKey: true,
		SelectColumns: []string{
			"ci", "primer_nombre", "segundo_nombre", "apellido_paterno",
			"apellido_materno", "celular", "correo_electronico", "rol",
		},
		Columns: []Column{
			{Header: "CI", Path: "ci"},
			{Header: "Nombre Completo", Expr: `(str(row.primer_nombre) + ' ' + str(row.segundo_nombre)).trim()`},
			{Header: "Apellido Completo", Expr: `(str(row.apellido_paterno) + ' ' + str(row.apellido_materno)).trim()`},
			{Header: "Rol", Path: "rol"},
			{Header: "Correo Electrónico", Path: "correo_electronico"},
		},
		SearchFields: []string{"ci", "primer_nombre", "apellido_paterno", "correo_electronico"},
		Filter: &SecondaryFilter{
			Field:  "rol",
			Values: []string{"admin", "vendedor", "cliente"},
			All:    "todos",
		},
		FormFields: []Field{
			{Name: "id", Label: "ID (UUID)", Kind: KindHidden, Disabled: true},
			{Name: "ci", Label: "Cédula de Identidad (CI)", Kind: KindText, Required: true,
				Pattern: PatternDigits, PatternLen: 7,
				Message: "El C.I. debe contener exactamente 7 dígitos."},
			{Name: "primer_nombre", Label: "Primer Nombre", Kind: KindText, Required: true,
				Pattern: PatternLetters, Message: "El primer nombre solo puede contener letras."},
			{Name: "segundo_nombre", Label: "Segundo Nombre", Kind: KindText,
				Pattern: PatternLetters, Message: "El segundo nombre solo puede contener letras."},
			{Name: "apellido_paterno", Label: "Apellido Paterno", Kind: KindText, Required: true,
				Pattern: PatternLetters, Message: "Los apellidos solo pueden contener letras."},
			{Name: "apellido_materno", Label: "Apellido Materno", Kind: KindText, Required: true,
				Pattern: PatternLetters, Message: "Los apellidos solo pueden contener letras."},
			{Name: "celular", Label: "Celular", Kind: KindText, Required: true,
				Pattern: PatternDigits, PatternLen: 8,
				Message: "El celular debe contener exactamente 8 dígitos."},
			{Name: "correo_electronico", Label: "Correo Electrónico", Kind: KindEmail, Required: true,
				Pattern: PatternEmail, Message: "Debe ingresar un correo válido."},
			{Name: "contrasena", Label: "Contraseña", Kind: KindPassword, Required: true,
				Pattern: PatternPassword, KeepCurrentWhenEmpty: true,
				Message: "La contraseña es insegura. Debe tener al menos 8 caracteres, incluir una mayúscula, un número y un carácter especial (@$!%*?&)."},
			// Not editable from the panel, but always written: new
			// accounts start as cliente, edits carry the stored role.
			{Name: "rol", Label: "Rol", Kind: KindText, Disabled: true, Default: "cliente"},
		},
		OptionLabelFields: []string{"primer_nombre", "apellido_paterno", "ci"},
		AllowCreate:       true,
		SelfDeleteGuard:   true,
	})

	r.MustRegister(&Entity{
		Name:    "direccion",
		Label:   "Dirección",
		Table:   "direccion",
		IDField: "id_direccion",
		SelectColumns: []string{
			"calle_avenida", "numero_casa_edificio", "referencia_adicional",
			"id_usuario", "id_zona",
		},
		Joins: []Join{
			{Table: "usuario", Alias: "usuario", LocalKey: "id_usuario", ForeignKey: "id",
				Columns: []string{"primer_nombre", "segundo_nombre", "apellido_paterno", "apellido_materno"}},
			{Table: "zona", Alias: "zona", LocalKey: "id_zona", ForeignKey: "id_zona",
				Columns: []string{"nombre"},
				Joins: []Join{
					{Table: "localidad", Alias: "localidad", LocalKey: "id_localidad", ForeignKey: "id_localidad",
						Columns: []string{"nombre"}},
				}},
		},
		Columns: []Column{
			{Header: "Cliente", Expr: `(str(row.usuario.primer_nombre) + ' ' + str(row.usuario.apellido_paterno)).trim()`},
			{Header: "Localidad", Path: "zona.localidad.nombre"},
			{Header: "Calle/Avenida", Path: "calle_avenida"},
			{Header: "N° Casa/Edificio", Path: "numero_casa_edificio"},
			{Header: "Referencia Adicional", Path: "referencia_adicional"},
			{Header: "Zona", Path: "zona.nombre"},
		},
		SearchFields: []string{
			"calle_avenida", "zona.nombre", "zona.localidad.nombre",
			"usuario.primer_nombre", "usuario.apellido_paterno",
		},
		FormFields: []Field{
			{Name: "id_direccion", Label: "ID", Kind: KindHidden, Disabled: true},
			{Name: "id_usuario", Label: "Usuario (Propietario)", Kind: KindSelect, Required: true,
				Source: &OptionSource{Entity: "usuario"}},
			{Name: "id_zona", Label: "Zona", Kind: KindSelect, Required: true,
				Source: &OptionSource{Entity: "zona"}},
			{Name: "calle_avenida", Label: "Calle/Avenida", Kind: KindText, Required: true, MaxLength: 150},
			{Name: "numero_casa_edificio", Label: "N° Casa/Edificio", Kind: KindText, MaxLength: 20},
			{Name: "referencia_adicional", Label: "Referencia Adicional", Kind: KindTextarea},
		},
		OptionLabelFields: []string{"calle_avenida", "numero_casa_edificio"},
		OptionParentKey:   "id_usuario",
		AllowCreate:       true,
	})

	r.MustRegister(&Entity{
		Name:    "orden",
		Label:   "Orden",
		Table:   "orden",
		IDField: "id",
		SelectColumns: []string{
			"fecha", "total", "metodo_pago", "estado", "observaciones",
			"id_usuario", "id_direccion",
		},
		Joins: []Join{
			{Table: "usuario", Alias: "usuario", LocalKey: "id_usuario", ForeignKey: "id",
				Columns: []string{"primer_nombre", "segundo_nombre", "apellido_paterno", "apellido_materno"}},
			{Table: "direccion", Alias: "direccion", LocalKey: "id_direccion", ForeignKey: "id_direccion",
				Columns: []string{"calle_avenida", "numero_casa_edificio", "referencia_adicional"},
				Joins: []Join{
					{Table: "zona", Alias: "zona", LocalKey: "id_zona", ForeignKey: "id_zona",
						Columns: []string{"nombre"},
						Joins: []Join{
							{Table: "localidad", Alias: "localidad", LocalKey: "id_localidad", ForeignKey: "id_localidad",
								Columns: []string{"nombre"},
								Joins: []Join{
									{Table: "municipio", Alias: "municipio", LocalKey: "id_municipio", ForeignKey: "id_municipio",
										Columns: []string{"nombre"},
										Joins: []Join{
											{Table: "departamento", Alias: "departamento", LocalKey: "id_departamento", ForeignKey: "id_departamento",
												Columns: []string{"nombre"}},
										}},
								}},
						}},
				}},
		},
		Columns: []Column{
			{Header: "Cliente", Expr: `(str(row.usuario.primer_nombre) + ' ' + str(row.usuario.apellido_paterno)).trim()`},
			{Header: "Fecha", Path: "fecha"},
			{Header: "Total", Path: "total", Format: FormatMoney},
			{Header: "Método Pago", Path: "metodo_pago"},
			{Header: "Dirección Completa", Expr: `str(row.direccion.calle_avenida) + ' Nº ' + str(row.direccion.numero_casa_edificio) + ', ' + str(row.direccion.zona.nombre) + ', ' + str(row.direccion.zona.localidad.nombre) + ', ' + str(row.direccion.zona.localidad.municipio.nombre) + ' (' + str(row.direccion.zona.localidad.municipio.departamento.nombre) + ')'`},
			{Header: "Estado", Path: "estado"},
		},
		SearchFields: []string{
			"estado", "metodo_pago",
			"usuario.primer_nombre", "usuario.apellido_paterno",
		},
		FormFields: []Field{
			{Name: "id", Label: "ID", Kind: KindHidden, Disabled: true},
			{Name: "fecha", Label: "Fecha de Creación", Kind: KindDatetime, Required: true, Disabled: true},
			{Name: "id_usuario", Label: "Cédula de Identidad (Cliente)", Kind: KindSelect, Required: true,
				Source: &OptionSource{Entity: "usuario"}},
			{Name: "id_direccion", Label: "Dirección de Entrega", Kind: KindSelect, Required: true,
				Source: &OptionSource{Entity: "direccion", DependsOn: "id_usuario"}},
			{Name: "metodo_pago", Label: "Método de Pago", Kind: KindSelect, Required: true,
				Enum: []string{"QR", "EFECTIVO", "TARJETA"}},
			{Name: "estado", Label: "Estado de la Orden", Kind: KindSelect, Required: true,
				Enum: []string{"PENDIENTE", "ENTREGADO", "CANCELADO"}},
			{Name: "observaciones", Label: "Observaciones", Kind: KindTextarea},
			{Name: "total", Label: "Total", Kind: KindHidden, Disabled: true},
		},
		OptionLabelFields: []string{"id"},
	})

	r.MustRegister(&Entity{
		Name:          "orden_detalle",
		Label:         "Detalle de Orden",
		Table:         "orden_detalle",
		IDField:       "id",
		SelectColumns: []string{"id_orden", "id_producto", "cantidad", "precio_unitario"},
		Joins: []Join{
			{Table: "producto", Alias: "producto", LocalKey: "id_producto", ForeignKey: "id",
				Columns: []string{"nombre"}},
		},
		Columns: []Column{
			{Header: "N° Orden", Path: "id_orden"},
			{Header: "Producto", Path: "producto.nombre"},
			{Header: "Cantidad", Path: "cantidad"},
			{Header: "Precio Unitario", Path: "precio_unitario", Format: FormatMoney},
		},
		SearchFields: []string{"id_orden"},
		FormFields: []Field{
			{Name: "id_producto", Label: "Producto", Kind: KindSelect, Required: true,
				Source: &OptionSource{Entity: "producto"}},
			{Name: "cantidad", Label: "Cantidad", Kind: KindNumber, Required: true},
			{Name: "precio_unitario", Label: "Precio Unitario (Bs.)", Kind: KindNumber, Required: true, Disabled: true},
		},
		OptionLabelFields: []string{"id"},
		OptionParentKey:   "id_orden",
	})

	r.MustRegister(&Entity{
		Name:          "departamento",
		Label:         "Departamento",
		Table:         "departamento",
		IDField:       "id_departamento",
		SelectColumns: []string{"nombre"},
		Columns: []Column{
			{Header: "Nombre de Departamento", Path: "nombre"},
			{Header: "Visible", Path: "visible"},
		},
		SearchFields: []string{"nombre"},
		FormFields: []Field{
			{Name: "nombre", Label: "Nombre del Departamento", Kind: KindText, Required: true, MaxLength: 50},
		},
		OptionLabelFields: []string{"nombre"},
		AllowCreate:       true,
		AllowRestore:      true,
	})

	r.MustRegister(&Entity{
		Name:          "municipio",
		Label:         "Municipio",
		Table:         "municipio",
		IDField:       "id_municipio",
		SelectColumns: []string{"nombre", "id_departamento"},
		Joins: []Join{
			{Table: "departamento", Alias: "departamento", LocalKey: "id_departamento", ForeignKey: "id_departamento",
				Columns: []string{"nombre"}},
		},
		Columns: []Column{
			{Header: "Municipio", Path: "nombre"},
			{Header: "Departamento", Path: "departamento.nombre"},
			{Header: "Visible", Path: "visible"},
		},
		SearchFields: []string{"nombre", "departamento.nombre"},
		FormFields: []Field{
			{Name: "nombre", Label: "Nombre del Municipio", Kind: KindText, Required: true},
			{Name: "id_departamento", Label: "Departamento", Kind: KindSelect, Required: true,
				Source: &OptionSource{Entity: "departamento"}},
		},
		OptionLabelFields: []string{"nombre"},
		OptionParentKey:   "id_departamento",
		AllowCreate:       true,
	})

	r.MustRegister(&Entity{
		Name:          "localidad",
		Label:         "Localidad",
		Table:         "localidad",
		IDField:       "id_localidad",
		SelectColumns: []string{"nombre", "id_municipio"},
		Joins: []Join{
			{Table: "municipio", Alias: "municipio", LocalKey: "id_municipio", ForeignKey: "id_municipio",
				Columns: []string{"nombre"}},
		},
		Columns: []Column{
			{Header: "Localidad", Path: "nombre"},
			{Header: "Municipio", Path: "municipio.nombre"},
		},
		SearchFields: []string{"nombre", "municipio.nombre"},
		FormFields: []Field{
			{Name: "id_localidad", Label: "ID Localidad", Kind: KindHidden, Disabled: true},
			{Name: "id_departamento", Label: "Departamento", Kind: KindSelect, Required: true, Transient: true,
				Source: &OptionSource{Entity: "departamento"}},
			{Name: "id_municipio", Label: "Municipio", Kind: KindSelect, Required: true,
				Source: &OptionSource{Entity: "municipio", DependsOn: "id_departamento"}},
			{Name: "nombre", Label: "Nombre de la Localidad", Kind: KindText, Required: true, MaxLength: 100},
		},
		OptionLabelFields: []string{"nombre"},
		OptionParentKey:   "id_municipio",
		AllowCreate:       true,
	})

	r.MustRegister(&Entity{
		Name:          "zona",
		Label:         "Zona",
		Table:         "zona",
		IDField:       "id_zona",
		SelectColumns: []string{"nombre", "id_localidad"},
		Joins: []Join{
			{Table: "localidad", Alias: "localidad", LocalKey: "id_localidad", ForeignKey: "id_localidad",
				Columns: []string{"nombre"}},
		},
		Columns: []Column{
			{Header: "Nombre de Zona", Path: "nombre"},
			{Header: "Localidad", Path: "localidad.nombre"},
			{Header: "Visible", Path: "visible"},
		},
		SearchFields: []string{"nombre", "localidad.nombre"},
		FormFields: []Field{
			{Name: "id_departamento", Label: "Departamento", Kind: KindSelect, Required: true, Transient: true,
				Source: &OptionSource{Entity: "departamento"}},
			{Name: "id_municipio", Label: "Municipio", Kind: KindSelect, Required: true, Transient: true,
				Source: &OptionSource{Entity: "municipio", DependsOn: "id_departamento"}},
			{Name: "id_localidad", Label: "Localidad", Kind: KindSelect, Required: true,
				Source: &OptionSource{Entity: "localidad", DependsOn: "id_municipio"}},
			{Name: "nombre", Label: "Nombre de la Zona", Kind: KindText, Required: true},
		},
		OptionLabelFields: []string{"nombre"},
		OptionParentKey:   "id_localidad",
		AllowCreate:       true,
	})

	return r
}
